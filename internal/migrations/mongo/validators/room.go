package validators

import "go.mongodb.org/mongo-driver/bson"

// objectIDString matches the 24 character hex ids every document uses.
var objectIDString = bson.M{
	"bsonType": "string",
	"pattern":  "^[0-9a-fA-F]{24}$",
}

var RoomValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"_id", "hotelId", "roomType", "availability"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id":     objectIDString,
			"hotelId": objectIDString,
			"roomType": bson.M{
				"bsonType": "string",
				"enum":     []string{"Single", "Double", "Deluxe", "Suite"},
			},
			"price": bson.M{
				"bsonType": []string{"double", "int", "long", "decimal"},
				"minimum":  0,
			},
			"availability": bson.M{
				"bsonType": "bool",
			},
		},
	},
}
