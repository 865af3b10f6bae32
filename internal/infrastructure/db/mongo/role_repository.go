package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bazarit/marketplace-api/internal/core/domain"
)

const (
	roleCollection       = "roles"
	permissionCollection = "permissions"
)

// MongoRoleRepository reads and manages the role/permission graph. Roles hold
// permission ids; resolution joins them with a single $lookup aggregation so
// a role and its permissions come from one snapshot.
type MongoRoleRepository struct {
	roles       *mongo.Collection
	permissions *mongo.Collection
}

func NewRoleRepository(db *mongo.Database) *MongoRoleRepository {
	return &MongoRoleRepository{
		roles:       db.Collection(roleCollection),
		permissions: db.Collection(permissionCollection),
	}
}

// EnsureIndexes creates the unique name indexes on both collections.
func (r *MongoRoleRepository) EnsureIndexes(ctx context.Context) error {
	unique := mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := r.roles.Indexes().CreateOne(ctx, unique); err != nil {
		return fmt.Errorf("create role index: %w", err)
	}
	if _, err := r.permissions.Indexes().CreateOne(ctx, unique); err != nil {
		return fmt.Errorf("create permission index: %w", err)
	}
	return nil
}

type mongoRole struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty"`
	Name          string               `bson:"name"`
	Description   string               `bson:"description,omitempty"`
	PermissionIDs []primitive.ObjectID `bson:"permission_ids,omitempty"`
}

type mongoPermission struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Description string             `bson:"description,omitempty"`
}

type mongoRoleWithPermissions struct {
	mongoRole   `bson:",inline"`
	Permissions []mongoPermission `bson:"permissions"`
}

func (r *MongoRoleRepository) FindByNameWithPermissions(ctx context.Context, name string) (*domain.Role, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"name": name}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         permissionCollection,
			"localField":   "permission_ids",
			"foreignField": "_id",
			"as":           "permissions",
		}}},
	}

	cursor, err := r.roles.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("resolve role: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []mongoRoleWithPermissions
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode role: %w", err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrRoleNotFound
	}

	return toRole(rows[0]), nil
}

func (r *MongoRoleRepository) ListRoles(ctx context.Context) ([]domain.Role, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$lookup", Value: bson.M{
			"from":         permissionCollection,
			"localField":   "permission_ids",
			"foreignField": "_id",
			"as":           "permissions",
		}}},
		{{Key: "$sort", Value: bson.M{"name": 1}}},
	}

	cursor, err := r.roles.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []mongoRoleWithPermissions
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode roles: %w", err)
	}

	roles := make([]domain.Role, 0, len(rows))
	for _, row := range rows {
		roles = append(roles, *toRole(row))
	}
	return roles, nil
}

func (r *MongoRoleRepository) CreateRole(ctx context.Context, name, description string) (*domain.Role, error) {
	res, err := r.roles.InsertOne(ctx, mongoRole{Name: name, Description: description})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrRoleExists
		}
		return nil, fmt.Errorf("insert role: %w", err)
	}

	id, _ := res.InsertedID.(primitive.ObjectID)
	return &domain.Role{
		ID:          id.Hex(),
		Name:        name,
		Description: description,
		Permissions: []domain.Permission{},
	}, nil
}

// AttachPermission adds the permission to the role's set. $addToSet keeps the
// (role, permission) pair unique.
func (r *MongoRoleRepository) AttachPermission(ctx context.Context, roleName, permissionName string) error {
	var mp mongoPermission
	if err := r.permissions.FindOne(ctx, bson.M{"name": permissionName}).Decode(&mp); err != nil {
		if err == mongo.ErrNoDocuments {
			return domain.ErrPermissionNotFound
		}
		return fmt.Errorf("find permission: %w", err)
	}

	res, err := r.roles.UpdateOne(ctx,
		bson.M{"name": roleName},
		bson.M{"$addToSet": bson.M{"permission_ids": mp.ID}},
	)
	if err != nil {
		return fmt.Errorf("attach permission: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrRoleNotFound
	}
	return nil
}

func (r *MongoRoleRepository) ListPermissions(ctx context.Context) ([]domain.Permission, error) {
	cursor, err := r.permissions.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"name": 1}))
	if err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []mongoPermission
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode permissions: %w", err)
	}

	perms := make([]domain.Permission, 0, len(rows))
	for _, row := range rows {
		perms = append(perms, domain.Permission{ID: row.ID.Hex(), Name: row.Name, Description: row.Description})
	}
	return perms, nil
}

func (r *MongoRoleRepository) CreatePermission(ctx context.Context, name, description string) (*domain.Permission, error) {
	res, err := r.permissions.InsertOne(ctx, mongoPermission{Name: name, Description: description})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrPermissionExists
		}
		return nil, fmt.Errorf("insert permission: %w", err)
	}

	id, _ := res.InsertedID.(primitive.ObjectID)
	return &domain.Permission{ID: id.Hex(), Name: name, Description: description}, nil
}

func toRole(row mongoRoleWithPermissions) *domain.Role {
	perms := make([]domain.Permission, 0, len(row.Permissions))
	for _, p := range row.Permissions {
		perms = append(perms, domain.Permission{ID: p.ID.Hex(), Name: p.Name, Description: p.Description})
	}
	return &domain.Role{
		ID:          row.ID.Hex(),
		Name:        row.Name,
		Description: row.Description,
		Permissions: perms,
	}
}
