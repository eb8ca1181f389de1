// Package remote answers directory queries through the user-service gRPC API.
package remote

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	userv1 "github.com/sentiric/sentiric-contracts/gen/go/sentiric/user/v1"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/sentiric/sentiric-contact-resolver/internal/directory"
	"github.com/sentiric/sentiric-contact-resolver/internal/logger"
)

const (
	contactTypeEmail = "email"
	contactTypePhone = "phone"
)

// UserDirectory adapts the user-service lookups to directory.Client. The
// user-service resolves one user per contact, so every query yields at most
// one record.
type UserDirectory struct {
	client      userv1.UserServiceClient
	conn        *grpc.ClientConn
	log         zerolog.Logger
	countryCode string
}

// TLSFiles configures mutual TLS. Leaving all paths empty dials insecurely.
type TLSFiles struct {
	CertPath string
	KeyPath  string
	CaPath   string
}

// Dial connects to the user-service at target.
func Dial(target string, files TLSFiles, countryCode string, log zerolog.Logger) (*UserDirectory, error) {
	creds, err := loadClientTLS(files)
	if err != nil {
		return nil, err
	}
	conn, err := grpc.NewClient(target, grpc.WithTransportCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("user-service bağlantısı kurulamadı: %w", err)
	}
	d := NewUserDirectory(userv1.NewUserServiceClient(conn), countryCode, log)
	d.conn = conn
	return d, nil
}

// NewUserDirectory wraps an existing client.
func NewUserDirectory(client userv1.UserServiceClient, countryCode string, log zerolog.Logger) *UserDirectory {
	return &UserDirectory{client: client, log: log, countryCode: countryCode}
}

func (d *UserDirectory) Close() error {
	if d.conn == nil {
		return nil
	}
	return d.conn.Close()
}

func (d *UserDirectory) Query(ctx context.Context, filter directory.Filter) ([]*directory.Record, error) {
	if err := directory.Validate(filter); err != nil {
		return nil, err
	}
	ctx = outgoingTraceContext(ctx)

	var (
		user *userv1.User
		err  error
	)
	switch filter.Field {
	case directory.FieldID:
		var resp *userv1.GetUserResponse
		resp, err = d.client.GetUser(ctx, &userv1.GetUserRequest{UserId: filter.Value})
		user = resp.GetUser()
	case directory.FieldEmail:
		user, err = d.findByContact(ctx, contactTypeEmail, filter.Value)
	case directory.FieldTel:
		normalized := directory.NormalizePhone(filter.Value, d.countryCode)
		if normalized == "" {
			return nil, nil
		}
		user, err = d.findByContact(ctx, contactTypePhone, normalized)
	}

	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		d.log.Warn().Err(err).Str("filter", filter.String()).Msg("user-service sorgusu başarısız")
		return nil, fmt.Errorf("%w: %s", directory.ErrBackend, status.Convert(err).Message())
	}
	if user == nil {
		return nil, nil
	}
	return []*directory.Record{toRecord(user)}, nil
}

func (d *UserDirectory) findByContact(ctx context.Context, contactType, value string) (*userv1.User, error) {
	resp, err := d.client.FindUserByContact(ctx, &userv1.FindUserByContactRequest{
		ContactType:  contactType,
		ContactValue: value,
	})
	if err != nil {
		return nil, err
	}
	return resp.GetUser(), nil
}

func toRecord(u *userv1.User) *directory.Record {
	rec := &directory.Record{ID: u.GetId(), TenantID: u.GetTenantId()}
	if name := u.GetName(); name != "" {
		rec.Name = []directory.Entry{{Value: name, Primary: true}}
	}
	for _, c := range u.GetContacts() {
		entry := directory.Entry{Type: c.GetContactType(), Value: c.GetContactValue(), Primary: c.GetIsPrimary()}
		switch c.GetContactType() {
		case contactTypeEmail:
			rec.Email = append(rec.Email, entry)
		case contactTypePhone:
			rec.Tel = append(rec.Tel, entry)
		}
	}
	return rec
}

func outgoingTraceContext(ctx context.Context) context.Context {
	if traceID := logger.TraceIDFromContext(ctx); traceID != "" {
		return metadata.AppendToOutgoingContext(ctx, logger.TraceIDMetadataKey, traceID)
	}
	return ctx
}

func loadClientTLS(files TLSFiles) (credentials.TransportCredentials, error) {
	if files.CertPath == "" && files.KeyPath == "" && files.CaPath == "" {
		return insecure.NewCredentials(), nil
	}
	certificate, err := tls.LoadX509KeyPair(files.CertPath, files.KeyPath)
	if err != nil {
		return nil, fmt.Errorf("istemci sertifikası yüklenemedi: %w", err)
	}
	caCert, err := os.ReadFile(files.CaPath)
	if err != nil {
		return nil, fmt.Errorf("CA sertifikası okunamadı: %w", err)
	}
	caPool := x509.NewCertPool()
	if !caPool.AppendCertsFromPEM(caCert) {
		return nil, fmt.Errorf("CA sertifikası havuza eklenemedi")
	}
	tlsConfig := &tls.Config{
		Certificates: []tls.Certificate{certificate},
		RootCAs:      caPool,
		MinVersion:   tls.VersionTLS12,
	}
	return credentials.NewTLS(tlsConfig), nil
}
