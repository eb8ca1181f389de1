package memory

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sentiric/sentiric-contact-resolver/internal/directory"
)

type seedFile struct {
	Records []*directory.Record `yaml:"records"`
}

// ReadSeed decodes a YAML document of the form
//
//	records:
//	  - id: u-1
//	    name: [{value: Ayşe Yılmaz}]
//	    email: [{value: ayse@example.com}]
//
// Every record needs an id.
func ReadSeed(r io.Reader) ([]*directory.Record, error) {
	var f seedFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("seed dosyası çözümlenemedi: %w", err)
	}
	for i, rec := range f.Records {
		if rec == nil || rec.ID == "" {
			return nil, fmt.Errorf("seed kaydı %d: id zorunlu", i)
		}
	}
	return f.Records, nil
}

// LoadSeedFile reads the seed at path into m and returns how many records it held.
func (m *InMemory) LoadSeedFile(path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	records, err := ReadSeed(file)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	m.Put(records...)
	return len(records), nil
}
