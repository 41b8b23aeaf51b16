// Service wiring shared by the serve and sync commands.
package main

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"github.com/stageworks/backstage/internal/admin"
	"github.com/stageworks/backstage/internal/authgate"
	"github.com/stageworks/backstage/internal/blobstore"
	"github.com/stageworks/backstage/internal/config"
	"github.com/stageworks/backstage/internal/contentsync"
	"github.com/stageworks/backstage/internal/docstore"
	"github.com/stageworks/backstage/internal/httpapi"
)

// app holds the wired services for one command invocation.
type app struct {
	cfg    config.Config
	logger zerolog.Logger

	docs  docstore.Store
	blobs blobstore.Store
	gate  *authgate.Gate
	sync  *contentsync.Manager
	orch  *admin.Orchestrator

	// serverOpts carries mode-specific server setup, such as serving
	// local uploads from disk.
	serverOpts []httpapi.Option
}

// close releases the document store connection.
func (a *app) close() {
	if a.docs != nil {
		if err := a.docs.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("closing document store")
		}
	}
}

// buildApp wires the document store, blob store, and identity provider for
// the configured mode, then the gate, the sync manager, and the
// orchestrator on top of them.
func buildApp(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	var provider authgate.Provider
	switch cfg.Mode {
	case config.ModeLocal:
		docs, err := docstore.OpenSQLite(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("open document store: %w", err)
		}
		a.docs = docs

		local, err := blobstore.NewLocal(cfg.UploadsDir, cfg.BaseURL)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("open blob store: %w", err)
		}
		a.blobs = local
		a.serverOpts = append(a.serverOpts, httpapi.WithLocalBlobs(local))

		mem := authgate.NewMemoryProvider()
		mem.OnLink = func(email, token string) {
			logger.Info().Str("email", email).Str("token", token).
				Msg("sign-in link issued; confirm with this token")
		}
		provider = mem

	case config.ModeFirebase:
		var opts []option.ClientOption
		if cfg.Firebase.CredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.Firebase.CredentialsFile))
		}

		fbApp, err := firebase.NewApp(ctx, &firebase.Config{
			ProjectID:     cfg.Firebase.ProjectID,
			StorageBucket: cfg.Firebase.Bucket,
		}, opts...)
		if err != nil {
			return nil, fmt.Errorf("init firebase app: %w", err)
		}

		fsClient, err := fbApp.Firestore(ctx)
		if err != nil {
			return nil, fmt.Errorf("init firestore: %w", err)
		}
		a.docs = docstore.NewFirestore(fsClient)

		gcsClient, err := storage.NewClient(ctx, opts...)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("init cloud storage: %w", err)
		}
		a.blobs = blobstore.NewGCS(gcsClient, cfg.Firebase.Bucket)

		authClient, err := fbApp.Auth(ctx)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("init firebase auth: %w", err)
		}
		mailer := &authgate.SMTPMailer{
			Addr:     net.JoinHostPort(cfg.SMTP.Host, strconv.Itoa(cfg.SMTP.Port)),
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		}
		provider = authgate.NewFirebaseProvider(authClient, cfg.Firebase.APIKey, mailer)

	default:
		return nil, config.ErrModeUnknown
	}

	a.gate = authgate.New(provider, cfg.AllowedEmails, cfg.ReturnURL, logger)
	a.sync = contentsync.NewManager(a.docs, logger)
	a.orch = admin.New(a.docs, a.blobs, a.sync, logger)

	// An authenticated admin immediately gets a fresh view.
	a.gate.SetOnAuthenticated(func() {
		a.sync.RefreshAll(context.Background())
	})

	return a, nil
}
