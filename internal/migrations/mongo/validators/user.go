package validators

import "go.mongodb.org/mongo-driver/bson"

var UserValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"name",
			"email",
			"password_hash",
			"role",
			"status",
			"is_deleted",
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

			"email": bson.M{
				"bsonType":  "string",
				"maxLength": 254,
			},

			"password_hash": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"phone": bson.M{
				"bsonType": "string",
				"pattern":  `^\+[1-9]\d{1,14}$`,
			},

			"role": bson.M{
				"bsonType": "string",
				"enum":     []string{"user", "admin"},
			},

			"status": bson.M{
				"bsonType": "string",
				"enum":     []string{"pending", "active", "rejected"},
			},

			"is_deleted": bson.M{
				"bsonType": "bool",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"reset_password_otp": bson.M{
				"bsonType": "string",
			},

			"reset_password_otp_expires": bson.M{
				"bsonType": "date",
			},
		},
	},
}
