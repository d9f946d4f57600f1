package validators

import "go.mongodb.org/mongo-driver/bson"

var HotelValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"_id", "name", "location", "rooms"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": objectIDString,
			"name": bson.M{
				"bsonType":  "string",
				"minLength": 3,
				"maxLength": 100,
			},
			"location": bson.M{
				"bsonType":  "string",
				"minLength": 3,
				"maxLength": 100,
			},
			"rooms": bson.M{
				"bsonType": "array",
				"items":    objectIDString,
			},
		},
	},
}
