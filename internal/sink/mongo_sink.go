package sink

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/Sin9ular37/Address-MatchMaster/app/models"
)

// MongoSink 结果写入 MongoDB，供人工复核工具消费
type MongoSink struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *zap.Logger
}

// NewMongo 连接 MongoDB 并返回下沉器
func NewMongo(ctx context.Context, uri, database, collection string, logger *zap.Logger) (*MongoSink, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return &MongoSink{
		client:     client,
		collection: client.Database(database).Collection(collection),
		logger:     logger,
	}, nil
}

// mongoResult MatchResult 的落库结构
type mongoResult struct {
	AddressID  string             `bson:"address_id"`
	POIID      string             `bson:"poi_id,omitempty"`
	POIName    string             `bson:"poi_name,omitempty"`
	Score      float64            `bson:"score"`
	Breakdown  map[string]float64 `bson:"breakdown,omitempty"`
	Reason     string             `bson:"reason"`
	AdminLevel string             `bson:"admin_level"`
	Lat        *float64           `bson:"lat,omitempty"`
	Lng        *float64           `bson:"lng,omitempty"`
	CreatedAt  time.Time          `bson:"created_at"`
}

func (s *MongoSink) Write(ctx context.Context, results []models.MatchResult) error {
	if len(results) == 0 {
		return nil
	}
	now := time.Now()
	docs := make([]interface{}, 0, len(results))
	for _, r := range results {
		doc := mongoResult{
			AddressID:  r.AddressID,
			POIID:      r.POIID,
			POIName:    r.POIName,
			Score:      r.Score,
			Breakdown:  r.Breakdown,
			Reason:     string(r.Reason),
			AdminLevel: r.AdminLevel.String(),
			CreatedAt:  now,
		}
		if r.Location != nil {
			doc.Lat = &r.Location.Lat
			doc.Lng = &r.Location.Lng
		}
		docs = append(docs, doc)
	}
	// Ordered 保持输入顺序
	opts := options.InsertMany().SetOrdered(true)
	if _, err := s.collection.InsertMany(ctx, docs, opts); err != nil {
		return fmt.Errorf("insert match results: %w", err)
	}
	s.logger.Info("results written to mongodb", zap.Int("count", len(docs)))
	return nil
}

func (s *MongoSink) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
