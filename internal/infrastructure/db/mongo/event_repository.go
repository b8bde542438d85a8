package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/clinicreserve/reservation-system/internal/core/domain"
	"github.com/clinicreserve/reservation-system/internal/core/ports"
)

const eventsCollection = "appointment_events"

// EventRepository implements ports.EventRepository using MongoDB.
type EventRepository struct {
	db *mongo.Database
}

var _ ports.EventRepository = (*EventRepository)(nil)

// NewEventRepository creates a new EventRepository.
func NewEventRepository(db *mongo.Database) *EventRepository {
	return &EventRepository{db: db}
}

// eventDocument is the stored shape of an audit entry.
type eventDocument struct {
	AppointmentID int64     `bson:"appointment_id"`
	Action        string    `bson:"action"`
	Status        string    `bson:"status"`
	ClinicID      int64     `bson:"clinic_id"`
	UserID        *string   `bson:"user_id,omitempty"`
	DateTime      time.Time `bson:"date_time"`
	Actor         string    `bson:"actor"`
	RecordedAt    time.Time `bson:"recorded_at"`
}

// EnsureIndexes creates the lookup index used by ListByAppointment.
func (r *EventRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.db.Collection(eventsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "appointment_id", Value: 1}, {Key: "recorded_at", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create %s index: %w", eventsCollection, err)
	}
	return nil
}

// InsertEvent persists an appointment event to the audit collection.
func (r *EventRepository) InsertEvent(ctx context.Context, event *domain.AppointmentEvent) error {
	doc := eventDocument{
		AppointmentID: event.AppointmentID,
		Action:        string(event.Action),
		Status:        string(event.Status),
		ClinicID:      event.ClinicID,
		UserID:        event.UserID,
		DateTime:      event.DateTime.UTC(),
		Actor:         event.Actor,
		RecordedAt:    event.RecordedAt.UTC(),
	}
	if doc.RecordedAt.IsZero() {
		doc.RecordedAt = time.Now().UTC()
	}

	_, err := r.db.Collection(eventsCollection).InsertOne(ctx, doc)
	return err
}

// ListByAppointment returns the audit trail of one appointment, oldest first.
func (r *EventRepository) ListByAppointment(ctx context.Context, appointmentID int64) ([]*domain.AppointmentEvent, error) {
	opts := options.Find().SetSort(bson.D{{Key: "recorded_at", Value: 1}})
	cur, err := r.db.Collection(eventsCollection).Find(ctx, bson.M{"appointment_id": appointmentID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find appointment events: %w", err)
	}
	defer cur.Close(ctx)

	var docs []eventDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode appointment events: %w", err)
	}

	out := make([]*domain.AppointmentEvent, 0, len(docs))
	for _, d := range docs {
		out = append(out, &domain.AppointmentEvent{
			AppointmentID: d.AppointmentID,
			Action:        domain.AppointmentAction(d.Action),
			Status:        domain.AppointmentStatus(d.Status),
			ClinicID:      d.ClinicID,
			UserID:        d.UserID,
			DateTime:      d.DateTime.UTC(),
			Actor:         d.Actor,
			RecordedAt:    d.RecordedAt.UTC(),
		})
	}
	return out, nil
}
