package validators

import "go.mongodb.org/mongo-driver/bson"

const (
	hhmmPattern = "^([01][0-9]|2[0-3]):[0-5][0-9]$"
	datePattern = "^[0-9]{4}-[0-9]{2}-[0-9]{2}$"
)

var ReservationValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"_id",
			"restaurant_id",
			"table_id",
			"date",
			"start_time",
			"duration_minutes",
			"guests_count",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"restaurant_id": bson.M{
				"bsonType":  "string",
				"minLength": 36,
				"maxLength": 36,
			},

			"table_id": bson.M{
				"bsonType":  "string",
				"minLength": 36,
				"maxLength": 36,
			},

			"date": bson.M{
				"bsonType": "string",
				"pattern":  datePattern,
			},

			"start_time": bson.M{
				"bsonType": "string",
				"pattern":  hhmmPattern,
			},

			"duration_minutes": bson.M{
				"bsonType": integer,
				"minimum":  5,
				"maximum":  720,
			},

			"guests_count": bson.M{
				"bsonType": integer,
				"minimum":  1,
				"maximum":  100,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"pending",
					"confirmed",
					"cancelled",
					"completed",
				},
			},

			"notes": bson.M{
				"bsonType":  "string",
				"maxLength": 500,
			},

			"guest_phone": bson.M{
				"bsonType": "string",
				"pattern":  "^\\+[1-9][0-9]{7,14}$",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
