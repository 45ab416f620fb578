package database

import (
	"context"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gocql/gocql"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"kissariya_back_end/internal/config"
)

// Databases regroupe les connexions aux services externes.
// Elastic et MinIO sont optionnels : nil s'ils ne sont pas configurés.
type Databases struct {
	Scylla  *gocql.Session
	Redis   *redis.Client
	Elastic *elasticsearch.Client
	MinIO   *minio.Client

	log *zap.Logger
}

// Connect ouvre toutes les connexions. Scylla et Redis sont obligatoires.
func Connect(ctx context.Context, cfg config.Config, log *zap.Logger) (*Databases, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	db := &Databases{log: log}

	// 1. ScyllaDB
	session, err := connectScylla(cfg)
	if err != nil {
		return nil, err
	}
	db.Scylla = session
	log.Info("✅ Connecté à ScyllaDB", zap.Strings("hosts", cfg.ScyllaHosts), zap.String("keyspace", cfg.ScyllaKeyspace))

	// 2. Redis
	db.Redis, err = connectRedis(ctx, cfg)
	if err != nil {
		db.Close()
		return nil, err
	}
	log.Info("✅ Connecté à Redis", zap.String("addr", cfg.RedisHost))

	// 3. Elasticsearch
	if cfg.ElasticURL != "" {
		db.Elastic, err = connectElastic(cfg)
		if err != nil {
			log.Warn("⚠️ Elasticsearch indisponible, recherche désactivée", zap.Error(err))
		} else {
			log.Info("✅ Connecté à Elasticsearch", zap.String("url", cfg.ElasticURL))
		}
	} else {
		log.Warn("⚠️ ELASTIC_URL non configuré, recherche désactivée")
	}

	// 4. MinIO
	if cfg.MinIOEndpoint != "" {
		db.MinIO, err = connectMinIO(ctx, cfg, log)
		if err != nil {
			log.Warn("⚠️ MinIO indisponible, upload d'images désactivé", zap.Error(err))
		} else {
			log.Info("✅ Connecté à MinIO", zap.String("endpoint", cfg.MinIOEndpoint))
		}
	} else {
		log.Warn("⚠️ MINIO_ENDPOINT non configuré, upload d'images désactivé")
	}

	return db, nil
}

func (db *Databases) Close() {
	if db.Scylla != nil {
		db.Scylla.Close()
		db.log.Info("🔌 Session ScyllaDB fermée")
	}
	if db.Redis != nil {
		if err := db.Redis.Close(); err != nil {
			db.log.Warn("⚠️ Fermeture Redis", zap.Error(err))
		}
	}
}

func connectScylla(cfg config.Config) (*gocql.Session, error) {
	cluster := gocql.NewCluster(cfg.ScyllaHosts...)
	cluster.Keyspace = cfg.ScyllaKeyspace
	cluster.Consistency = gocql.Quorum
	cluster.Timeout = 5 * time.Second
	cluster.NumConns = 20
	cluster.MaxWaitSchemaAgreement = 30 * time.Second
	cluster.ReconnectInterval = 1 * time.Second
	if cfg.ScyllaUsername != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: cfg.ScyllaUsername,
			Password: cfg.ScyllaPassword,
		}
	}
	cluster.PoolConfig.HostSelectionPolicy = gocql.TokenAwareHostPolicy(gocql.RoundRobinHostPolicy())

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("création session ScyllaDB (%s): %w", cfg.ScyllaKeyspace, err)
	}
	return session, nil
}

func connectRedis(ctx context.Context, cfg config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisHost,
		Password:     cfg.RedisPassword,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("impossible de se connecter à Redis: %w", err)
	}
	return client, nil
}

func connectElastic(cfg config.Config) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.ElasticURL},
		Username:  cfg.ElasticUser,
		Password:  cfg.ElasticPassword,
	})
	if err != nil {
		return nil, fmt.Errorf("création client Elasticsearch: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("connexion Elasticsearch: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("connexion Elasticsearch: %s", res.Status())
	}
	return client, nil
}

func connectMinIO(ctx context.Context, cfg config.Config, log *zap.Logger) (*minio.Client, error) {
	client, err := minio.New(cfg.MinIOEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIOAccessKey, cfg.MinIOSecretKey, ""),
		Secure: cfg.MinIOUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("création client MinIO: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.MinIOBucket)
	if err != nil {
		return nil, fmt.Errorf("vérification bucket %s: %w", cfg.MinIOBucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinIOBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("création bucket %s: %w", cfg.MinIOBucket, err)
		}
		log.Info("🪣 Bucket créé", zap.String("bucket", cfg.MinIOBucket))
	}
	return client, nil
}
