package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/josenava/meal-calendar/internal/config"
	"github.com/josenava/meal-calendar/internal/repo"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type App struct {
	cfg    config.Config
	log    *zap.Logger
	pg     *pgxpool.Pool
	sqlite *sql.DB
	redis  *redis.Client
	router *gin.Engine
}

// Deps are the storage handles the router is built from.
// Redis is optional.
type Deps struct {
	Meals repo.MealRepo
	Users repo.UserRepo
	Redis *redis.Client
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log}

	var deps Deps
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		db, err := repo.OpenSQLite(ctx, cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.sqlite = db
		// Migrate the serving handle: an in-memory database dies with its connection.
		if cfg.Storage.AutoMigrate {
			applied, err := repo.Migrate(ctx, db, goose.DialectSQLite3)
			if err != nil {
				a.closeStorage()
				return nil, err
			}
			a.logMigrated(applied)
		}
		deps.Meals = repo.NewSQLiteMealRepo(db)
		deps.Users = repo.NewSQLiteUserRepo(db)
	default:
		if cfg.Storage.AutoMigrate {
			applied, err := RunMigrations(ctx, cfg.Storage)
			if err != nil {
				return nil, err
			}
			a.logMigrated(applied)
		}
		pool, err := newPostgres(ctx, cfg.Storage.PGDSN)
		if err != nil {
			return nil, err
		}
		a.pg = pool
		deps.Meals = repo.NewPGMealRepo(pool)
		deps.Users = repo.NewPGUserRepo(pool)
	}

	if cfg.Redis.Enabled() {
		rdb, err := newRedis(ctx, cfg.Redis)
		if err != nil {
			a.closeStorage()
			return nil, err
		}
		a.redis = rdb
		deps.Redis = rdb
	} else {
		log.Info("redis not configured, caching disabled and tokens kept in memory")
	}

	a.router = NewRouter(cfg, deps, log)
	return a, nil
}

func (a *App) logMigrated(applied []int64) {
	a.log.Info("migrations applied", zap.String("driver", a.cfg.Storage.Driver), zap.Int64s("versions", applied))
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func (a *App) Close(ctx context.Context) error {
	_ = ctx
	if a.redis != nil {
		_ = a.redis.Close()
	}
	a.closeStorage()
	return nil
}

func (a *App) closeStorage() {
	if a.pg != nil {
		a.pg.Close()
	}
	if a.sqlite != nil {
		_ = a.sqlite.Close()
	}
}

func newPostgres(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pg parse config: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 2
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pg connect: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg ping: %w", err)
	}

	return pool, nil
}

func newRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return rdb, nil
}

// OpenMigrationDB returns a database/sql handle and goose dialect for the
// configured storage. The caller closes the handle.
func OpenMigrationDB(ctx context.Context, cfg config.StorageConfig) (*sql.DB, goose.Dialect, error) {
	if cfg.Driver == config.DriverSQLite {
		db, err := repo.OpenSQLite(ctx, cfg.SQLitePath)
		return db, goose.DialectSQLite3, err
	}
	db, err := repo.OpenPostgresSQL(cfg.PGDSN)
	return db, goose.DialectPostgres, err
}

// RunMigrations applies pending migrations and returns their versions.
func RunMigrations(ctx context.Context, cfg config.StorageConfig) ([]int64, error) {
	db, dialect, err := OpenMigrationDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return repo.Migrate(ctx, db, dialect)
}

func newCORS(cfg config.HTTPConfig) gin.HandlerFunc {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length", "Content-Type"},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.CORSAllowOrigins) == 0 || (len(cfg.CORSAllowOrigins) == 1 && cfg.CORSAllowOrigins[0] == "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.CORSAllowOrigins
	}
	return cors.New(c)
}
