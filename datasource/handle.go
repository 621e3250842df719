// Package datasource gives the catalog's opaque data-source handle
// concrete, realistic inhabitants. The compiler core never inspects a
// Handle's concrete type — it only reads the name a Handle reports
// and seeds the table's stream op chain with it. Resolving a Handle
// into an actual row stream is the runtime's job, not the compiler's.
package datasource

import (
	"database/sql"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// Handle is the opaque data-source reference a catalog entry carries
// for one table. Core compilation code only ever calls Name; codegen
// stores the name as the seed operator of a stream's op_chain and
// leaves resolving the handle itself to the collaborating runtime.
type Handle interface {
	// Name is the opaque operator-source identifier emitted as the
	// first op_chain entry for the stream this handle backs.
	Name() string
}

// SQLHandle backs a table with a row-returning SQL table or view
// reachable through database/sql, the same shape relational data takes
// in the teacher pack's dolthub-go-mysql-server and omniql translators.
type SQLHandle struct {
	DB    *sql.DB
	Table string
}

func (h SQLHandle) Name() string { return "sql:" + h.Table }

// RedisHandle backs a table with a Redis key namespace, matching the
// key-value shape omniql's redis builder package models.
type RedisHandle struct {
	Client *redis.Client
	Prefix string
}

func (h RedisHandle) Name() string { return "redis:" + h.Prefix }

// MongoHandle backs a table with a single Mongo collection, matching
// the document shape omniql's mongodb builder package models.
type MongoHandle struct {
	Collection *mongo.Collection
}

func (h MongoHandle) Name() string {
	if h.Collection == nil {
		return "mongo:"
	}
	return "mongo:" + h.Collection.Name()
}

// StaticHandle is a named handle with no backing client at all, used
// in tests and for catalogs built in-process from literal rows.
type StaticHandle string

func (h StaticHandle) Name() string { return string(h) }
