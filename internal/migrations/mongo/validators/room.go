package validators

import "go.mongodb.org/mongo-driver/bson"

const hhmmPattern = `^([01][0-9]|2[0-3]):[0-5][0-9]$`

var RoomValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"name",
			"capacity",
			"open_at",
			"close_at",
			"time_zone",
			"slot_step_min",
			"active",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"location": bson.M{
				"bsonType":  "string",
				"maxLength": 200,
			},

			"capacity": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
				"maximum":  500,
			},

			"open_at": bson.M{
				"bsonType": "string",
				"pattern":  hhmmPattern,
			},

			"close_at": bson.M{
				"bsonType": "string",
				"pattern":  hhmmPattern,
			},

			"time_zone": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"slot_step_min": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  5,
				"maximum":  120,
			},

			"active": bson.M{
				"bsonType": "bool",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
