package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"user_id",
			"place_id",
			"event_title",
			"event_start_time",
			"event_end_time",
			"status",
			"requested_at",
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

			"place_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"event_title": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 120,
			},

			"reason": bson.M{
				"bsonType":  "string",
				"maxLength": 1000,
			},

			"description": bson.M{
				"bsonType":  "string",
				"maxLength": 1000,
			},

			"event_start_time": bson.M{
				"bsonType": "date",
			},

			"event_end_time": bson.M{
				"bsonType": "date",
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"pending",
					"approved",
					"rejected",
					"cancelled",
				},
			},

			"requested_facilities": bson.M{
				"bsonType": "array",
				"maxItems": 20,
				"items":    facilityItem,
			},

			"requested_at": bson.M{
				"bsonType": "date",
			},

			"decided_at": bson.M{
				"bsonType": "date",
			},

			"decided_by": bson.M{
				"bsonType": "string",
			},
		},
	},
}

var BookingLockValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"place_id", "version"},
		"properties": bson.M{
			"place_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},
			"version": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
			},
			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

var facilityItem = bson.M{
	"bsonType": "object",
	"required": []string{"name"},
	"properties": bson.M{
		"name": bson.M{
			"bsonType":  "string",
			"minLength": 1,
			"maxLength": 100,
		},
		"email": bson.M{
			"bsonType": "string",
		},
	},
}
