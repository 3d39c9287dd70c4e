package validators

import "go.mongodb.org/mongo-driver/bson"

var integer = []string{"int", "long"}

var RestaurantValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"_id",
			"slug",
			"name",
			"working_hours_start",
			"working_hours_end",
			"reservation_slot_minutes",
			"reservations_enabled",
			"time_zone",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType":  "string",
				"minLength": 36,
				"maxLength": 36,
			},

			"slug": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 120,
				"pattern":   "^[a-z0-9]+(?:-[a-z0-9]+)*$",
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"working_hours_start": bson.M{
				"bsonType": "string",
				"pattern":  hhmmPattern,
			},

			"working_hours_end": bson.M{
				"bsonType": "string",
				"pattern":  hhmmPattern,
			},

			"reservation_slot_minutes": bson.M{
				"bsonType": integer,
				"minimum":  5,
				"maximum":  720,
			},

			"reservations_enabled": bson.M{
				"bsonType": "bool",
			},

			"time_zone": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
