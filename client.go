// godoo/client.go
package godoo

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/kolo/xmlrpc"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggerEnv define los tipos de entorno para la configuración del logger.
type LoggerEnv string

const (
	// EnvDevelopment configura el logger para un entorno de desarrollo (salida legible).
	EnvDevelopment LoggerEnv = "development"
	// EnvProduction configura el logger para un entorno de producción (salida JSON estructurada).
	EnvProduction LoggerEnv = "production"
)

// OdooClient is a read oriented Odoo XML-RPC client.
// It holds the connection parameters and the authenticated session used by the
// spreadsheet data sources (read_group, search_read, name_get, fields_get).
type OdooClient struct {
	url           string
	db            string
	username      string
	password      string
	uid           int64
	rpcClient     *xmlrpc.Client
	lastAuth      time.Time
	authTimeout   time.Duration
	skipTLSVerify bool
	httpClient    *http.Client
	logger        *zap.Logger

	// mu guards the session fields; data sources issue RPCs concurrently.
	mu sync.Mutex
}

// NewLogger builds a zap logger for the given environment.
// It never fails: a broken configuration falls back to a no-op logger.
func NewLogger(env LoggerEnv) *zap.Logger {
	var cfg zap.Config
	if env == EnvDevelopment {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.CallerKey = ""
		cfg.DisableStacktrace = true
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.EncoderConfig.LevelKey = "level"
		cfg.EncoderConfig.TimeKey = "time"
		cfg.EncoderConfig.CallerKey = "caller"
		cfg.DisableStacktrace = false
	}

	logger, err := cfg.Build()
	if err != nil {
		log.Printf("Failed to build Zap logger for env '%s', falling back to no-op logger: %v", env, err)
		return zap.NewNop()
	}
	return logger
}

// Option es una función que configura un OdooClient.
type Option func(*OdooClient)

// WithAuthTimeout establece cuánto dura una sesión antes de volver a autenticarse.
func WithAuthTimeout(d time.Duration) Option {
	return func(c *OdooClient) {
		c.authTimeout = d
	}
}

// WithSkipTLSVerify establece si se debe omitir la verificación de certificados TLS.
// ADVERTENCIA: No usar en producción.
func WithSkipTLSVerify(skip bool) Option {
	return func(c *OdooClient) {
		c.skipTLSVerify = skip
	}
}

// WithHTTPClient establece un *http.Client personalizado para OdooClient.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *OdooClient) {
		c.httpClient = httpClient
	}
}

// WithLogger establece un logger de Zap personalizado para OdooClient.
// Si se usa después de WithLoggerEnv, anula la configuración de entorno.
func WithLogger(logger *zap.Logger) Option {
	return func(c *OdooClient) {
		c.logger = logger
	}
}

// WithLoggerEnv establece la configuración del logger de Zap basada en el entorno.
func WithLoggerEnv(env LoggerEnv) Option {
	return func(c *OdooClient) {
		c.logger = NewLogger(env)
	}
}

// New creates a new OdooClient. No network call is made until the first RPC.
func New(urlStr, db, username, password string, opts ...Option) (*OdooClient, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Odoo URL: %w", err)
	}
	if parsedURL.Scheme != "https" && parsedURL.Scheme != "http" {
		return nil, fmt.Errorf("invalid Odoo URL scheme: %s, must be http or https", parsedURL.Scheme)
	}

	client := &OdooClient{
		url:         urlStr,
		db:          db,
		username:    username,
		password:    password,
		authTimeout: 6 * time.Hour,
		httpClient:  http.DefaultClient,
		logger:      NewLogger(EnvProduction),
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.skipTLSVerify {
		client.logger.Warn("TLS certificate verification is disabled for Odoo connections",
			zap.String("component", "OdooClient"),
			zap.String("op", "New"),
		)
		if client.httpClient.Transport == nil {
			client.httpClient.Transport = &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			}
		} else if tr, ok := client.httpClient.Transport.(*http.Transport); ok {
			tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		} else {
			client.logger.Warn("Cannot apply skipTLSVerify to a non *http.Transport round tripper",
				zap.String("component", "OdooClient"),
				zap.String("op", "New"),
				zap.String("transport_type", fmt.Sprintf("%T", client.httpClient.Transport)),
			)
		}
	}

	return client, nil
}

// Logger returns the client logger so data sources built on top of the
// client can share it.
func (c *OdooClient) Logger() *zap.Logger {
	return c.logger
}

// transport returns the *http.Transport handed to kolo/xmlrpc, which only
// accepts that concrete type.
func (c *OdooClient) transport() *http.Transport {
	if c.httpClient.Transport == nil {
		return http.DefaultTransport.(*http.Transport)
	}
	if tr, ok := c.httpClient.Transport.(*http.Transport); ok {
		return tr
	}
	c.logger.Warn("HTTP client has a non-standard Transport, TLS settings may not apply",
		zap.String("transport_type", fmt.Sprintf("%T", c.httpClient.Transport)),
		zap.String("op", "transport"),
	)
	return http.DefaultTransport.(*http.Transport)
}

// authenticate logs in against /xmlrpc/2/common and opens the object endpoint.
// kolo/xmlrpc has no context support, so ctx is only checked between calls.
func (c *OdooClient) authenticate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		c.logger.Debug("Authentication cancelled before starting", zap.Error(err), zap.String("op", "authenticate"))
		return err
	}

	tr := c.transport()

	commonURL := fmt.Sprintf("%s/xmlrpc/2/common", c.url)
	commonRPCClient, err := xmlrpc.NewClient(commonURL, tr)
	if err != nil {
		c.logger.Error("Failed to connect to Odoo common endpoint",
			zap.Error(err),
			zap.String("url", commonURL),
			zap.String("op", "authenticate"),
		)
		return fmt.Errorf("failed to connect to Odoo common endpoint: %w", err)
	}
	defer commonRPCClient.Close()

	var uid int64
	err = commonRPCClient.Call("authenticate", []interface{}{c.db, c.username, c.password, map[string]interface{}{}}, &uid)
	if err != nil {
		c.logger.Error("Odoo authentication failed",
			zap.Error(err),
			zap.String("db", c.db),
			zap.String("username", c.username),
			zap.String("op", "authenticate"),
		)
		return fmt.Errorf("%w: %s", ErrAuthenticationFailed, err.Error())
	}
	if uid == 0 {
		return fmt.Errorf("%w: invalid credentials for user %q", ErrAuthenticationFailed, c.username)
	}

	if err := ctx.Err(); err != nil {
		c.logger.Debug("Authentication cancelled after login call", zap.Error(err), zap.String("op", "authenticate"))
		return err
	}

	objectURL := fmt.Sprintf("%s/xmlrpc/2/object", c.url)
	objectRPCClient, err := xmlrpc.NewClient(objectURL, tr)
	if err != nil {
		c.logger.Error("Failed to connect to Odoo object endpoint",
			zap.Error(err),
			zap.String("url", objectURL),
			zap.String("op", "authenticate"),
		)
		return fmt.Errorf("failed to connect to Odoo object endpoint: %w", err)
	}

	c.uid = uid
	c.rpcClient = objectRPCClient
	c.lastAuth = time.Now()
	c.logger.Info("Successfully authenticated with Odoo",
		zap.Int64("uid", c.uid),
		zap.String("db", c.db),
		zap.String("op", "authenticate"),
	)
	return nil
}

func (c *OdooClient) isAuthValid() bool {
	return c.uid != 0 && c.rpcClient != nil && time.Since(c.lastAuth) < c.authTimeout
}

// getConnection returns the user id and the object endpoint client,
// authenticating first when the session expired.
func (c *OdooClient) getConnection(ctx context.Context) (int64, *xmlrpc.Client, error) {
	if err := ctx.Err(); err != nil {
		c.logger.Debug("Context cancelled before getting Odoo connection", zap.Error(err))
		return 0, nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isAuthValid() {
		if c.rpcClient != nil {
			c.rpcClient.Close()
			c.rpcClient = nil
		}
		if err := c.authenticate(ctx); err != nil {
			return 0, nil, err
		}
	}
	return c.uid, c.rpcClient, nil
}
