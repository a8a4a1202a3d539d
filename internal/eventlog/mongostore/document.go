package mongostore

import (
	"fmt"
	"strconv"

	"chatbot-platform/internal/eventlog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// document is the stored shape of a workspace. Earlier deployments wrote
// destinations as 64-bit integers, so each field accepts either form.
type document struct {
	ID      snowflakeID `bson:"_id"`
	Joined  snowflakeID `bson:"joined"`
	Left    snowflakeID `bson:"left"`
	Edited  snowflakeID `bson:"edited"`
	Deleted snowflakeID `bson:"deleted"`
	Created snowflakeID `bson:"created"`
}

func (d document) config() eventlog.RoutingConfig {
	return eventlog.RoutingConfig{
		WorkspaceID: string(d.ID),
		Joined:      string(d.Joined),
		Left:        string(d.Left),
		Edited:      string(d.Edited),
		Deleted:     string(d.Deleted),
		Created:     string(d.Created),
	}
}

// snowflakeID decodes a platform ID stored as a string or an integer.
type snowflakeID string

func (id *snowflakeID) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.String:
		*id = snowflakeID(rv.StringValue())
	case bsontype.Int64:
		*id = snowflakeID(strconv.FormatInt(rv.Int64(), 10))
	case bsontype.Int32:
		*id = snowflakeID(strconv.FormatInt(int64(rv.Int32()), 10))
	case bsontype.Null, bsontype.Undefined:
		*id = ""
	default:
		return fmt.Errorf("mongostore: unsupported id type %s", t)
	}
	return nil
}
