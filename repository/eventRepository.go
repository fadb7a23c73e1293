package repository

import (
	"context"
	"errors"
	"time"

	"github.com/sportmate/server/entity"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type EventRepository struct {
	mongoClient *mongo.Client
	dbName      string
}

func NewEventRepository(mongoClient *mongo.Client, dbName string) *EventRepository {
	return &EventRepository{
		mongoClient: mongoClient,
		dbName:      dbName,
	}
}

func (r *EventRepository) collection() *mongo.Collection {
	return r.mongoClient.Database(r.dbName).Collection("events")
}

func (r *EventRepository) FindOneByID(ctx context.Context, ID primitive.ObjectID) (*entity.Event, error) {
	var event entity.Event
	err := r.collection().FindOne(ctx, bson.M{"_id": ID}).Decode(&event)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// EventFilter narrows the published-event listing. Zero values mean "any".
type EventFilter struct {
	Sport    string    `schema:"sport"`
	From     time.Time `schema:"from"`
	To       time.Time `schema:"to"`
	FreeOnly bool      `schema:"freeOnly"`
	Query    string    `schema:"q"`
}

func (r *EventRepository) FindManyPublished(ctx context.Context, filter EventFilter) ([]*entity.Event, error) {
	m := bson.M{"status": entity.EventStatusPublished}
	if filter.Sport != "" {
		m["sport"] = filter.Sport
	}
	if !filter.From.IsZero() || !filter.To.IsZero() {
		timeRange := bson.M{}
		if !filter.From.IsZero() {
			timeRange["$gte"] = filter.From
		}
		if !filter.To.IsZero() {
			timeRange["$lte"] = filter.To
		}
		m["startsAt"] = timeRange
	}
	if filter.FreeOnly {
		m["pricing.type"] = entity.PricingFree
	}
	return r.find(ctx, m)
}

func (r *EventRepository) FindManyByOrganizerID(ctx context.Context, organizerID primitive.ObjectID) ([]*entity.Event, error) {
	return r.find(ctx, bson.M{"organizerId": organizerID})
}

func (r *EventRepository) FindManyByParticipantID(ctx context.Context, userID primitive.ObjectID) ([]*entity.Event, error) {
	return r.find(ctx, bson.M{"participantIds": userID})
}

// FindManyWithRequestsByUserID returns events holding at least one join
// request filed by the user.
func (r *EventRepository) FindManyWithRequestsByUserID(ctx context.Context, userID primitive.ObjectID) ([]*entity.Event, error) {
	return r.find(ctx, bson.M{"joinRequests.userId": userID})
}

// FindManyWithPendingRequestsByOrganizerID returns the organizer's events
// that still have requests awaiting a decision.
func (r *EventRepository) FindManyWithPendingRequestsByOrganizerID(ctx context.Context, organizerID primitive.ObjectID) ([]*entity.Event, error) {
	return r.find(ctx, bson.M{
		"organizerId": organizerID,
		"joinRequests": bson.M{
			"$elemMatch": bson.M{"status": entity.JoinRequestPending},
		},
	})
}

func (r *EventRepository) find(ctx context.Context, m bson.M) ([]*entity.Event, error) {
	cursor, err := r.collection().Find(ctx, m, options.Find().SetSort(bson.M{"startsAt": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []*entity.Event
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *EventRepository) InsertOne(ctx context.Context, event *entity.Event) (*entity.Event, error) {
	now := time.Now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now
	res, err := r.collection().InsertOne(ctx, event)
	if err != nil {
		return nil, err
	}
	event.ID = res.InsertedID.(primitive.ObjectID)
	return event, nil
}

// UpdateOne replaces mutable event metadata. The admission state
// (participants, waitlist, join requests, capacity ledger) is only ever
// touched through the guarded helpers below.
func (r *EventRepository) UpdateOne(ctx context.Context, event *entity.Event) (*entity.Event, error) {
	return r.findOneAndUpdate(ctx,
		bson.M{"_id": event.ID},
		bson.M{"$set": bson.M{
			"title":            event.Title,
			"sport":            event.Sport,
			"description":      event.Description,
			"location":         event.Location,
			"startsAt":         event.StartsAt,
			"status":           event.Status,
			"requiresApproval": event.RequiresApproval,
			"pricing":          event.Pricing,
			"capacity.max":     event.Capacity.Max,
			"updatedAt":        time.Now().UTC(),
		}},
	)
}

func (r *EventRepository) DeleteOne(ctx context.Context, ID primitive.ObjectID) error {
	res, err := r.collection().DeleteOne(ctx, bson.M{"_id": ID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// The helpers below restate their preconditions in the update filter, so the
// admission decision is a compare-and-swap against the live document. Two
// requests racing for the last slot cannot both commit: the second one's
// filter no longer matches and it gets ErrNotFound back.

var capacityBelowMax = bson.M{"$expr": bson.M{
	"$lt": bson.A{bson.M{"$size": "$participantIds"}, "$capacity.max"},
}}

// AdmitParticipant appends the user to the roster if the event is published,
// below capacity, and the user is not in it yet.
func (r *EventRepository) AdmitParticipant(ctx context.Context, eventID, userID primitive.ObjectID) (*entity.Event, error) {
	return r.findOneAndUpdate(ctx,
		bson.M{
			"_id":            eventID,
			"status":         entity.EventStatusPublished,
			"participantIds": bson.M{"$ne": userID},
			"$expr":          capacityBelowMax["$expr"],
		},
		bson.M{
			"$push": bson.M{"participantIds": userID},
			"$inc":  bson.M{"capacity.current": 1},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		},
	)
}

// AppendJoinRequest records a pending request, guarding against a duplicate
// pending entry for the same user and against a full roster.
func (r *EventRepository) AppendJoinRequest(ctx context.Context, eventID primitive.ObjectID, request *entity.JoinRequest) (*entity.Event, error) {
	return r.findOneAndUpdate(ctx,
		bson.M{
			"_id":            eventID,
			"status":         entity.EventStatusPublished,
			"participantIds": bson.M{"$ne": request.UserID},
			"joinRequests": bson.M{"$not": bson.M{"$elemMatch": bson.M{
				"userId": request.UserID,
				"status": entity.JoinRequestPending,
			}}},
			"$expr": capacityBelowMax["$expr"],
		},
		bson.M{
			"$push": bson.M{"joinRequests": request},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		},
	)
}

// ApproveJoinRequest flips the pending request and admits its user in one
// document update. userID must be the request's user; it is part of the
// filter so a concurrently admitted user cannot be added twice.
func (r *EventRepository) ApproveJoinRequest(ctx context.Context, eventID, requestID, userID primitive.ObjectID) (*entity.Event, error) {
	now := time.Now().UTC()
	return r.findOneAndUpdate(ctx,
		bson.M{
			"_id": eventID,
			"joinRequests": bson.M{"$elemMatch": bson.M{
				"_id":    requestID,
				"status": entity.JoinRequestPending,
			}},
			"participantIds": bson.M{"$ne": userID},
			"$expr":          capacityBelowMax["$expr"],
		},
		bson.M{
			"$set": bson.M{
				"joinRequests.$.status":      entity.JoinRequestApproved,
				"joinRequests.$.respondedAt": now,
				"updatedAt":                  now,
			},
			"$push": bson.M{"participantIds": userID},
			"$inc":  bson.M{"capacity.current": 1},
		},
	)
}

func (r *EventRepository) RejectJoinRequest(ctx context.Context, eventID, requestID primitive.ObjectID) (*entity.Event, error) {
	now := time.Now().UTC()
	return r.findOneAndUpdate(ctx,
		bson.M{
			"_id": eventID,
			"joinRequests": bson.M{"$elemMatch": bson.M{
				"_id":    requestID,
				"status": entity.JoinRequestPending,
			}},
		},
		bson.M{"$set": bson.M{
			"joinRequests.$.status":      entity.JoinRequestRejected,
			"joinRequests.$.respondedAt": now,
			"updatedAt":                  now,
		}},
	)
}

// RemoveParticipantAndPromote drops the user from the roster and, in the same
// document update, moves the waitlist head (if any) into the freed slot.
// FIFO order: always the first waitlist element. The ledger is recomputed
// from the resulting participant array.
func (r *EventRepository) RemoveParticipantAndPromote(ctx context.Context, eventID, userID primitive.ObjectID) (*entity.Event, error) {
	return r.findOneAndUpdate(ctx,
		bson.M{"_id": eventID, "participantIds": userID},
		bson.A{
			bson.M{"$set": bson.M{
				"participantIds": bson.M{"$filter": bson.M{
					"input": "$participantIds",
					"cond":  bson.M{"$ne": bson.A{"$$this", userID}},
				}},
			}},
			bson.M{"$set": bson.M{
				"participantIds": bson.M{"$concatArrays": bson.A{
					"$participantIds",
					bson.M{"$slice": bson.A{"$waitlist", 1}},
				}},
				"waitlist": bson.M{"$cond": bson.A{
					bson.M{"$gt": bson.A{bson.M{"$size": "$waitlist"}, 1}},
					bson.M{"$slice": bson.A{"$waitlist", 1, bson.M{"$size": "$waitlist"}}},
					bson.A{},
				}},
			}},
			bson.M{"$set": bson.M{
				"capacity.current": bson.M{"$size": "$participantIds"},
				"updatedAt":        "$$NOW",
			}},
		},
	)
}

// AppendToWaitlist queues the user while the event is still full. Only
// immediate-admission events carry a waitlist.
func (r *EventRepository) AppendToWaitlist(ctx context.Context, eventID, userID primitive.ObjectID) (*entity.Event, error) {
	return r.findOneAndUpdate(ctx,
		bson.M{
			"_id":              eventID,
			"status":           entity.EventStatusPublished,
			"requiresApproval": false,
			"participantIds":   bson.M{"$ne": userID},
			"waitlist":         bson.M{"$ne": userID},
			"$expr": bson.M{
				"$gte": bson.A{bson.M{"$size": "$participantIds"}, "$capacity.max"},
			},
		},
		bson.M{
			"$push": bson.M{"waitlist": userID},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		},
	)
}

func (r *EventRepository) RemoveFromWaitlist(ctx context.Context, eventID, userID primitive.ObjectID) (*entity.Event, error) {
	return r.findOneAndUpdate(ctx,
		bson.M{"_id": eventID, "waitlist": userID},
		bson.M{
			"$pull": bson.M{"waitlist": userID},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		},
	)
}

func (r *EventRepository) findOneAndUpdate(ctx context.Context, filter bson.M, update interface{}) (*entity.Event, error) {
	var event entity.Event
	err := r.collection().FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&event)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}
