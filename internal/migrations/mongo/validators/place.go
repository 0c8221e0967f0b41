package validators

import "go.mongodb.org/mongo-driver/bson"

var PlaceValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"name",
			"capacity",
			"status",
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

			"details": bson.M{
				"bsonType":  "string",
				"maxLength": 2000,
			},

			"location": bson.M{
				"bsonType":  "string",
				"maxLength": 200,
			},

			"capacity": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
				"maximum":  100000,
			},

			"facilities": bson.M{
				"bsonType": "array",
				"maxItems": 50,
				"items":    facilityItem,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum":     []string{"available", "unavailable"},
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
