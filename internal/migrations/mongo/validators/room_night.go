package validators

import "go.mongodb.org/mongo-driver/bson"

var RoomNightValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"_id", "roomId", "bookingId", "night"},
		"additionalProperties": false,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
				"pattern":  "^[0-9a-fA-F]{24}:[0-9]{4}-[0-9]{2}-[0-9]{2}$",
			},
			"roomId":    objectIDString,
			"bookingId": objectIDString,
			"night": bson.M{
				"bsonType": "date",
			},
			"createdAt": bson.M{
				"bsonType": "date",
			},
		},
	},
}
