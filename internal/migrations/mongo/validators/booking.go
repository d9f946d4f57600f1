package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"_id",
			"userId",
			"hotelId",
			"roomId",
			"checkInDate",
			"checkOutDate",
			"totalPrice",
			"isPaid",
			"status",
			"createdAt",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id":     objectIDString,
			"userId":  objectIDString,
			"hotelId": objectIDString,
			"roomId":  objectIDString,

			"checkInDate": bson.M{
				"bsonType": "date",
			},
			"checkOutDate": bson.M{
				"bsonType": "date",
			},

			"totalPrice": bson.M{
				"bsonType": []string{"double", "int", "long", "decimal"},
				"minimum":  0,
			},
			"isPaid": bson.M{
				"bsonType": "bool",
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"PENDING",
					"CONFIRMED",
					"CANCELLED",
					"COMPLETED",
				},
			},

			"createdAt": bson.M{
				"bsonType": "date",
			},
		},
	},
}
