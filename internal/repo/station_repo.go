package repo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"

	"github.com/tazhibayda/radiostation-service/internal/domain"
)

var ErrMissingStationID = errors.New("station id required")

// InsertResult mirrors the insertOne acknowledgement returned to clients.
type InsertResult struct {
	Acknowledged bool        `json:"acknowledged"`
	InsertedID   interface{} `json:"insertedId"`
}

// UpsertResult mirrors the updateOne acknowledgement returned to clients.
type UpsertResult struct {
	Acknowledged  bool        `json:"acknowledged"`
	MatchedCount  int64       `json:"matchedCount"`
	ModifiedCount int64       `json:"modifiedCount"`
	UpsertedCount int64       `json:"upsertedCount"`
	UpsertedID    interface{} `json:"upsertedId"`
}

func (s *Store) ListStations(ctx context.Context) ([]domain.Station, error) {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.radioStation.find")
	defer sp.Finish()

	cur, err := s.colStations.Find(ctx, bson.M{})
	if err != nil {
		sp.SetTag("error", err)
		return nil, err
	}
	defer cur.Close(ctx)

	out := []domain.Station{}
	for cur.Next(ctx) {
		var st domain.Station
		if err := cur.Decode(&st); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, cur.Err()
}

func (s *Store) InsertStation(ctx context.Context, st domain.Station) (*InsertResult, error) {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.radioStation.insert")
	defer sp.Finish()

	res, err := s.colStations.InsertOne(ctx, st)
	if err != nil {
		sp.SetTag("error", err)
		return nil, err
	}
	return &InsertResult{Acknowledged: true, InsertedID: res.InsertedID}, nil
}

// UpsertStation replaces the fields of the station whose "id" matches, or
// inserts it when no station has that id.
func (s *Store) UpsertStation(ctx context.Context, st domain.Station) (*UpsertResult, error) {
	key, ok := st.Key()
	if !ok {
		return nil, ErrMissingStationID
	}
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.radioStation.upsert")
	defer sp.Finish()

	res, err := s.colStations.UpdateOne(ctx,
		bson.M{domain.StationKeyField: key},
		bson.M{"$set": st.Fields()},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		sp.SetTag("error", err)
		return nil, err
	}
	return &UpsertResult{
		Acknowledged:  true,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
		UpsertedCount: res.UpsertedCount,
		UpsertedID:    res.UpsertedID,
	}, nil
}
