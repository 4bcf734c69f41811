package validators

import "go.mongodb.org/mongo-driver/bson"

var AppointmentValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"user_id",
			"doc_id",
			"slot_date",
			"slot_time",
			"amount",
			"status",
			"booked_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"user_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"doc_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"slot_date": bson.M{
				"bsonType": "string",
				"pattern":  "^([1-9]|[12][0-9]|3[01])_([1-9]|1[0-2])_[0-9]{4}$",
			},

			"slot_time": bson.M{
				"bsonType": "string",
				"pattern":  "^(0[1-9]|1[0-2]):[0-5][0-9] (AM|PM)$",
			},

			"amount": bson.M{
				"bsonType": "int",
				"minimum":  1,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"booked",
					"cancelled",
					"completed",
				},
			},

			"paid": bson.M{
				"bsonType": "bool",
			},

			"feedback": bson.M{
				"bsonType":  "string",
				"maxLength": 2000,
			},

			"rating": bson.M{
				"bsonType": []string{"int", "null"},
				"minimum":  1,
				"maximum":  5,
			},

			"anonymous_feedback": bson.M{
				"bsonType": "bool",
			},

			"feedback_approved": bson.M{
				"bsonType": "bool",
			},

			"feedback_rejected": bson.M{
				"bsonType": "bool",
			},

			"booked_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
