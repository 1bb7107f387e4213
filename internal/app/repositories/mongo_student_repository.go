package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yigit/studentrecords/internal/app/models"
	"github.com/yigit/studentrecords/internal/pkg/apperrors"
	"github.com/yigit/studentrecords/internal/pkg/dberrors"
	"github.com/yigit/studentrecords/internal/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// studentDocument is the BSON shape of a student. An empty badge number is
// omitted so the sparse unique index ignores it.
type studentDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	StudentID   string             `bson:"studentId"`
	FirstName   string             `bson:"firstName"`
	LastName    string             `bson:"lastName"`
	Course      string             `bson:"course"`
	Address     string             `bson:"address"`
	BadgeNumber string             `bson:"badgeNumber,omitempty"`
	ImagePic    string             `bson:"imagePic,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d *studentDocument) toModel() *models.Student {
	return &models.Student{
		ID:          d.ID.Hex(),
		StudentID:   d.StudentID,
		FirstName:   d.FirstName,
		LastName:    d.LastName,
		Course:      d.Course,
		Address:     d.Address,
		BadgeNumber: d.BadgeNumber,
		ImagePic:    d.ImagePic,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// MongoStudentRepository stores students in a MongoDB collection
type MongoStudentRepository struct {
	collection *mongo.Collection
}

// NewMongoStudentRepository creates a repository over the given collection
func NewMongoStudentRepository(collection *mongo.Collection) *MongoStudentRepository {
	return &MongoStudentRepository{collection: collection}
}

// StudentIndexModels returns the unique indexes the students collection needs
func StudentIndexModels() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "studentId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "badgeNumber", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
	}
}

// EnsureIndexes creates the unique indexes if they do not exist yet
func (r *MongoStudentRepository) EnsureIndexes(ctx context.Context) error {
	names, err := r.collection.Indexes().CreateMany(ctx, StudentIndexModels())
	if err != nil {
		return fmt.Errorf("failed to create student indexes: %w", err)
	}
	logger.Debug().Strs("indexes", names).Msg("Student indexes ensured")
	return nil
}

// Create inserts a new student
func (r *MongoStudentRepository) Create(ctx context.Context, student *models.Student) error {
	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := studentDocument{
		ID:          primitive.NewObjectID(),
		StudentID:   student.StudentID,
		FirstName:   student.FirstName,
		LastName:    student.LastName,
		Course:      student.Course,
		Address:     student.Address,
		BadgeNumber: student.BadgeNumber,
		ImagePic:    student.ImagePic,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mapped := mapMongoDuplicate(err); mapped != nil {
			return mapped
		}
		logger.Error().Err(err).Str("studentId", student.StudentID).Msg("Error inserting student")
		return fmt.Errorf("error creating student: %w", err)
	}

	student.ID = doc.ID.Hex()
	student.CreatedAt = now
	student.UpdatedAt = now
	return nil
}

// Find returns every student matching the filter, oldest first
func (r *MongoStudentRepository) Find(ctx context.Context, filter models.StudentFilter) ([]*models.Student, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, mongoFilter(filter), opts)
	if err != nil {
		logger.Error().Err(err).Msg("Error querying students")
		return nil, fmt.Errorf("error listing students: %w", err)
	}
	defer cursor.Close(ctx)

	students := make([]*models.Student, 0)
	for cursor.Next(ctx) {
		var doc studentDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("error decoding student: %w", err)
		}
		students = append(students, doc.toModel())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("error iterating students: %w", err)
	}

	return students, nil
}

// FindByID returns the student with the given id
func (r *MongoStudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.ErrInvalidStudentRecordID
	}

	var doc studentDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("error getting student: %w", err)
	}
	return doc.toModel(), nil
}

// Update applies the changes. The document is read back as it was before the
// write and the updated student is derived from it.
func (r *MongoStudentRepository) Update(ctx context.Context, id string, changes models.StudentChanges) (*models.Student, *models.Student, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil, apperrors.ErrInvalidStudentRecordID
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)
	update := bson.M{"$set": mongoSet(changes, now)}

	var doc studentDocument
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil, apperrors.ErrStudentNotFound
		}
		if mapped := mapMongoDuplicate(err); mapped != nil {
			return nil, nil, mapped
		}
		logger.Error().Err(err).Str("id", id).Msg("Error updating student")
		return nil, nil, fmt.Errorf("error updating student: %w", err)
	}

	previous := doc.toModel()
	return applyUpdate(previous, changes, now), previous, nil
}

// Delete removes the student and returns it as it was
func (r *MongoStudentRepository) Delete(ctx context.Context, id string) (*models.Student, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.ErrInvalidStudentRecordID
	}

	var doc studentDocument
	if err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("error deleting student: %w", err)
	}
	return doc.toModel(), nil
}

// mongoFilter builds the query document for a filter
func mongoFilter(filter models.StudentFilter) bson.M {
	query := bson.M{}
	if filter.StudentID != "" {
		query["studentId"] = filter.StudentID
	}
	if filter.BadgeNumber != "" {
		query["badgeNumber"] = filter.BadgeNumber
	}
	return query
}

// mongoSet builds the $set document for an update
func mongoSet(changes models.StudentChanges, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	for field, value := range map[string]*string{
		"studentId":   changes.StudentID,
		"firstName":   changes.FirstName,
		"lastName":    changes.LastName,
		"course":      changes.Course,
		"address":     changes.Address,
		"badgeNumber": changes.BadgeNumber,
		"imagePic":    changes.ImagePic,
	} {
		if value != nil {
			set[field] = *value
		}
	}
	return set
}

// applyUpdate returns a copy of previous with the $set of mongoSet applied
func applyUpdate(previous *models.Student, changes models.StudentChanges, now time.Time) *models.Student {
	updated := *previous
	changes.Apply(&updated)
	updated.UpdatedAt = now
	return &updated
}

func mapMongoDuplicate(err error) error {
	switch {
	case dberrors.IsDuplicateIndexError(err, StudentIDMongoIndex):
		return apperrors.ErrStudentIDAlreadyExists
	case dberrors.IsDuplicateIndexError(err, BadgeNumberMongoIndex):
		return apperrors.ErrBadgeNumberAlreadyExists
	}
	return nil
}
