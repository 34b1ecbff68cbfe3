package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "drively/internal/domain/booking"
	"drively/internal/domain/cars"
	domainpricing "drively/internal/domain/pricing"
	domainrange "drively/internal/domain/shared/daterange"
	"drively/internal/domain/shared/money"
)

var ErrConcurrentUpdate = errors.New("mongo: concurrent update detected")

// BookingRepository persists confirmed bookings with optimistic versioning.
type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{col: db.Collection("agg_booking")}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrBookingNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	filter := bson.M{"_id": doc.ID, "version": b.Version}
	doc.Version = b.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	b.Version = doc.Version
	return nil
}

func (r *BookingRepository) ListByGuest(ctx context.Context, guestID string) ([]*domainbooking.Booking, error) {
	opts := options.Find().SetSort(bson.M{"created_at": 1})
	cursor, err := r.col.Find(ctx, bson.M{"guest_id": guestID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []*domainbooking.Booking
	for cursor.Next(ctx) {
		var doc bookingDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cursor.Err()
}

type bookingDocument struct {
	ID              string         `bson:"_id"`
	CarID           string         `bson:"car_id"`
	GuestID         string         `bson:"guest_id"`
	Range           rangeDocument  `bson:"range"`
	AddOns          addOnsDocument `bson:"add_ons"`
	PickupLocation  string         `bson:"pickup_location"`
	DropoffLocation string         `bson:"dropoff_location"`
	SpecialRequests string         `bson:"special_requests"`
	TotalAmount     int64          `bson:"total_amount"`
	TotalCurrency   string         `bson:"total_currency"`
	State           string         `bson:"state"`
	CreatedAt       int64          `bson:"created_at"`
	UpdatedAt       int64          `bson:"updated_at"`
	Version         int64          `bson:"version"`
}

type rangeDocument struct {
	Pickup int64 `bson:"pickup"`
	Return int64 `bson:"return"`
}

type addOnsDocument struct {
	Insurance        bool `bson:"insurance"`
	GPS              bool `bson:"gps"`
	ChildSeat        bool `bson:"child_seat"`
	AdditionalDriver bool `bson:"additional_driver"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	return bookingDocument{
		ID:      string(b.ID),
		CarID:   string(b.CarID),
		GuestID: b.GuestID,
		Range:   rangeDocument{Pickup: b.Range.Pickup.UnixMilli(), Return: b.Range.Return.UnixMilli()},
		AddOns: addOnsDocument{
			Insurance:        b.AddOns.Insurance,
			GPS:              b.AddOns.GPS,
			ChildSeat:        b.AddOns.ChildSeat,
			AdditionalDriver: b.AddOns.AdditionalDriver,
		},
		PickupLocation:  b.PickupLocation,
		DropoffLocation: b.DropoffLocation,
		SpecialRequests: b.SpecialRequests,
		TotalAmount:     b.Total.Amount,
		TotalCurrency:   b.Total.Currency,
		State:           string(b.State),
		CreatedAt:       b.CreatedAt.UnixMilli(),
		UpdatedAt:       b.UpdatedAt.UnixMilli(),
		Version:         b.Version,
	}
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	return &domainbooking.Booking{
		ID:      domainbooking.BookingID(d.ID),
		CarID:   cars.CarID(d.CarID),
		GuestID: d.GuestID,
		Range:   domainrange.DateRange{Pickup: timestampToTime(d.Range.Pickup), Return: timestampToTime(d.Range.Return)},
		AddOns: domainpricing.AddOns{
			Insurance:        d.AddOns.Insurance,
			GPS:              d.AddOns.GPS,
			ChildSeat:        d.AddOns.ChildSeat,
			AdditionalDriver: d.AddOns.AdditionalDriver,
		},
		PickupLocation:  d.PickupLocation,
		DropoffLocation: d.DropoffLocation,
		SpecialRequests: d.SpecialRequests,
		Total:           money.Money{Amount: d.TotalAmount, Currency: d.TotalCurrency},
		State:           domainbooking.BookingState(d.State),
		CreatedAt:       timestampToTime(d.CreatedAt),
		UpdatedAt:       timestampToTime(d.UpdatedAt),
		Version:         d.Version,
	}
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
