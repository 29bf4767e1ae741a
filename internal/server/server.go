// Package server assembles the portal from configuration: backends, services,
// the authorization gate and the HTTP router.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/dwusrc/dwu-src-web-application-sub002/handlers"
	"github.com/dwusrc/dwu-src-web-application-sub002/internal/access"
	"github.com/dwusrc/dwu-src-web-application-sub002/internal/avatar"
	"github.com/dwusrc/dwu-src-web-application-sub002/internal/config"
	"github.com/dwusrc/dwu-src-web-application-sub002/internal/database"
	"github.com/dwusrc/dwu-src-web-application-sub002/internal/departments"
	"github.com/dwusrc/dwu-src-web-application-sub002/internal/gate"
	"github.com/dwusrc/dwu-src-web-application-sub002/internal/identity"
	"github.com/dwusrc/dwu-src-web-application-sub002/internal/news"
	"github.com/dwusrc/dwu-src-web-application-sub002/internal/oidc"
	"github.com/dwusrc/dwu-src-web-application-sub002/internal/profiles"
	"github.com/dwusrc/dwu-src-web-application-sub002/internal/reports"
	"github.com/dwusrc/dwu-src-web-application-sub002/internal/sessions"
	"github.com/dwusrc/dwu-src-web-application-sub002/internal/storage"
	"github.com/dwusrc/dwu-src-web-application-sub002/internal/tokens"
	"github.com/dwusrc/dwu-src-web-application-sub002/pkg/logger"
	"github.com/dwusrc/dwu-src-web-application-sub002/pkg/metrics"
	"github.com/dwusrc/dwu-src-web-application-sub002/pkg/middleware"
)

const mongoConnectAttempts = 5

// App is the assembled service.
type App struct {
	cfg     *config.Config
	started time.Time

	mongo    *mongo.Client
	redis    *redis.Client
	objects  *storage.MinIOStorage
	verifier *oidc.Verifier
	indexers []database.Indexer
	registry *prometheus.Registry

	Identity    *identity.Provider
	Profiles    *profiles.Service
	Sessions    *sessions.Service
	Reports     *reports.Service
	Departments *departments.Service
	News        *news.Service
	Gate        *gate.Factory

	router *gin.Engine
}

// Build connects the configured backends and wires every component.
// Production requires both Redis and MongoDB. Elsewhere a missing MONGODB_URI
// means in-memory stores, and a missing REDIS_HOST means sessions live in Mongo
// or memory and access tokens are not revocable.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{cfg: cfg, started: time.Now()}

	if err := a.connectRedis(ctx); err != nil {
		return nil, err
	}
	if err := a.connectMongo(ctx); err != nil {
		a.Close(context.Background())
		return nil, err
	}
	a.wireStores()
	a.connectObjects(ctx)
	a.connectOIDC(ctx)

	evaluator, err := access.NewEvaluator(cfg.Policy.File, access.Catalogue()...)
	if err != nil {
		a.Close(context.Background())
		return nil, err
	}
	for _, act := range access.Catalogue() {
		logger.L().Info().Str("action", act.Name).Strs("roles", evaluator.Grants(act.Name)).Msg("access policy")
	}
	issuer := tokens.NewIssuer(cfg.JWT)
	blacklist := sessions.NewBlacklist(a.redis)
	var extra []middleware.Verifier
	if a.verifier != nil {
		extra = append(extra, a.verifier)
	}
	resolver := gate.NewResolver(a.Sessions, blacklist, issuer, cfg.Session, extra...)
	a.Gate = gate.NewFactory(resolver, a.Profiles, evaluator, cfg.Server.ProviderTimeout).WithLimiter(a.rateLimiter())

	var avatars *avatar.Service
	if a.objects != nil {
		avatars = avatar.NewService(a.objects, cfg.Avatar.UploadURLTTL)
	}

	a.registry = prometheus.NewRegistry()
	metrics.RegisterCollectors(a.registry)

	a.router = a.newRouter(
		handlers.NewAuthHandler(cfg.Session, a.Identity, a.Profiles, a.Sessions, blacklist, issuer, a.Gate),
		handlers.NewPortalHandler(a.Gate, a.Identity, a.Departments, a.News, a.Reports, avatars),
	)
	return a, nil
}

func (a *App) connectRedis(ctx context.Context) error {
	addr := a.cfg.Redis.Addr()
	if addr == "" {
		if a.cfg.Server.Environment == "production" {
			return fmt.Errorf("redis: REDIS_HOST is required in production")
		}
		logger.Warnf("REDIS_HOST not set: access tokens cannot be revoked before expiry")
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: a.cfg.Redis.Password, DB: a.cfg.Redis.DB})
	pctx, cancel := context.WithTimeout(ctx, a.cfg.Server.ProviderTimeout)
	defer cancel()
	if err := client.Ping(pctx).Err(); err != nil {
		_ = client.Close()
		if a.cfg.Server.Environment == "production" {
			return fmt.Errorf("redis %s: %w", addr, err)
		}
		logger.Warnf("failed to connect to Redis (%s): %v", addr, err)
		return nil
	}
	logger.Infof("connected to Redis: %s", addr)
	a.redis = client
	return nil
}

func (a *App) connectMongo(ctx context.Context) error {
	if a.cfg.MongoDB.URI == "" {
		logger.Warnf("MONGODB_URI not set: using in-memory stores")
		return nil
	}
	client, err := database.ConnectWithRetry(ctx, a.cfg.MongoDB.URI, a.cfg.MongoDB.Timeout, mongoConnectAttempts)
	if err != nil {
		if a.cfg.Server.Environment == "production" {
			return err
		}
		logger.Warnf("could not connect to MongoDB (%v): using in-memory stores", err)
		return nil
	}
	a.mongo = client
	return nil
}

func (a *App) wireStores() {
	if a.mongo == nil {
		a.Identity = identity.NewProvider(identity.NewMemoryRepository())
		a.Profiles = profiles.NewService(profiles.NewMemoryRepository())
		a.Reports = reports.NewService(reports.NewMemoryRepository())
		a.Departments = departments.NewService(departments.NewMemoryRepository())
		a.News = news.NewService(news.NewMemoryRepository())
	} else {
		db := a.mongo.Database(a.cfg.MongoDB.Database)
		ids := identity.NewMongoRepository(db.Collection(database.IdentitiesCollection))
		rep := reports.NewMongoRepository(db.Collection(database.ReportsCollection))
		dep := departments.NewMongoRepository(db.Collection(database.DepartmentsCollection))
		nws := news.NewMongoRepository(db.Collection(database.NewsCollection))
		a.Identity = identity.NewProvider(ids)
		a.Profiles = profiles.NewService(profiles.NewMongoRepository(db.Collection(database.ProfilesCollection)))
		a.Reports = reports.NewService(rep)
		a.Departments = departments.NewService(dep)
		a.News = news.NewService(nws)
		a.indexers = append(a.indexers, ids, rep, dep, nws)
	}

	var repo sessions.Repository
	switch {
	case a.redis != nil:
		repo = sessions.NewRedisRepository(a.redis, "session:")
		logger.Infof("using Redis for session storage")
	case a.mongo != nil:
		mrepo := sessions.NewMongoRepository(a.mongo.Database(a.cfg.MongoDB.Database).Collection(database.SessionsCollection))
		a.indexers = append(a.indexers, mrepo)
		repo = mrepo
		logger.Infof("using MongoDB for session storage")
	default:
		repo = sessions.NewMemoryRepository()
	}
	a.Sessions = sessions.NewService(repo, a.cfg.JWT.RefreshTokenTTL).WithRotationGrace(a.cfg.Session.RotationGrace)
}

func (a *App) connectObjects(ctx context.Context) {
	if a.cfg.MinIO.Endpoint == "" {
		logger.Warnf("MINIO_ENDPOINT not set: avatar uploads disabled")
		return
	}
	s, err := storage.NewMinIOStorage(ctx, a.cfg.MinIO)
	if err != nil {
		logger.Warnf("object store unavailable: %v", err)
		return
	}
	a.objects = s
}

func (a *App) connectOIDC(ctx context.Context) {
	if a.cfg.OIDC.Issuer == "" || a.cfg.OIDC.ClientID == "" {
		return
	}
	v, err := oidc.NewVerifier(ctx, a.cfg.OIDC.Issuer, a.cfg.OIDC.ClientID)
	if err != nil {
		logger.Warnf("failed to initialize OIDC verifier: %v", err)
		return
	}
	a.verifier = v
}

// Handler returns the HTTP handler.
func (a *App) Handler() http.Handler { return a.router }

// EnsureIndexes creates the Mongo indexes and seeds the default departments.
func (a *App) EnsureIndexes(ctx context.Context) error {
	if err := database.EnsureIndexes(ctx, a.indexers...); err != nil {
		return err
	}
	return a.Departments.Seed(ctx, departments.Defaults...)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", a.cfg.Server.Host, a.cfg.Server.Port),
		Handler:      a.router,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Infof("SRC portal listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	logger.Infof("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(sctx)
}

// Close releases backend connections.
func (a *App) Close(ctx context.Context) {
	if a.mongo != nil {
		_ = a.mongo.Disconnect(ctx)
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}
