package cmd

import (
	"context"

	"github.com/Laisky/errors/v2"
	gconfig "github.com/Laisky/go-config/v2"
	minioLib "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	redisLib "github.com/redis/go-redis/v9"

	"github.com/Eli-Gooding/ChatGenius-App/internal/assistant"
	chatDao "github.com/Eli-Gooding/ChatGenius-App/internal/chat/dao"
	"github.com/Eli-Gooding/ChatGenius-App/library/db/mongo"
	"github.com/Eli-Gooding/ChatGenius-App/library/db/postgres"
	"github.com/Eli-Gooding/ChatGenius-App/library/db/redis"
	"github.com/Eli-Gooding/ChatGenius-App/library/log"
)

// dependencies bundles the shared clients and services built once per process.
type dependencies struct {
	svc   *assistant.Service
	chat  *chatDao.Dao
	queue *redis.DB
}

// buildDependencies connects the external collaborators and wires the
// assistant pipeline with explicitly injected clients.
func buildDependencies(ctx context.Context) (*dependencies, error) {
	settings := assistant.LoadSettingsFromConfig()

	pgDB, err := postgres.NewDB(ctx, postgres.DialInfo{
		Addr:   gconfig.S.GetString("settings.db.vector.addr"),
		DBName: gconfig.S.GetString("settings.db.vector.db"),
		User:   gconfig.S.GetString("settings.db.vector.user"),
		Pwd:    gconfig.S.GetString("settings.db.vector.pwd"),
	})
	if err != nil {
		return nil, errors.Wrap(err, "connect vector postgres")
	}

	index, err := assistant.NewPgVectorIndex(ctx, pgDB,
		settings.Namespace, settings.EmbeddingDimensions,
		log.Logger.Named("pgvector_index"))
	if err != nil {
		return nil, errors.Wrap(err, "create vector index")
	}

	embedder := assistant.NewOpenAIEmbedder(
		settings.OpenAIBaseURL, settings.OpenAIAPIKey, settings.EmbeddingModel, nil)
	completion := assistant.NewChatCompletionClient(
		settings.OpenAIBaseURL, settings.OpenAIAPIKey, settings.ChatModel,
		settings.Temperature, settings.MaxOutputTokens, nil)

	svc, err := assistant.NewService(
		embedder, index, assistant.WindowChunker{}, assistant.PlainTextExtractor{},
		completion, settings, log.Logger.Named("assistant"))
	if err != nil {
		return nil, errors.Wrap(err, "create assistant service")
	}

	mongoDB, err := mongo.NewDB(ctx, mongo.DialInfo{
		Addr:   gconfig.S.GetString("settings.db.chat.addr"),
		DBName: gconfig.S.GetString("settings.db.chat.db"),
		User:   gconfig.S.GetString("settings.db.chat.user"),
		Pwd:    gconfig.S.GetString("settings.db.chat.pwd"),
	})
	if err != nil {
		return nil, errors.Wrap(err, "connect chat mongo")
	}

	minioCli, err := minioLib.New(gconfig.S.GetString("settings.minio.endpoint"), &minioLib.Options{
		Creds: credentials.NewStaticV4(
			gconfig.S.GetString("settings.minio.access_key"),
			gconfig.S.GetString("settings.minio.secret_key"),
			"",
		),
		Secure: gconfig.S.GetBool("settings.minio.secure"),
	})
	if err != nil {
		return nil, errors.Wrap(err, "connect minio")
	}

	deps := &dependencies{
		svc:  svc,
		chat: chatDao.New(mongoDB, minioCli, gconfig.S.GetString("settings.minio.bucket")),
	}

	if addr := gconfig.S.GetString("settings.db.redis.addr"); addr != "" {
		deps.queue = redis.NewDB(&redisLib.Options{
			Addr:     addr,
			DB:       gconfig.S.GetInt("settings.db.redis.db"),
			Password: gconfig.S.GetString("settings.db.redis.pwd"),
		})
	}

	return deps, nil
}
