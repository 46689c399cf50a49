package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"name",
			"identity_number",
			"age",
			"contact",
			"seat",
			"bus_id",
			"price",
			"booking_date",
			"user_id",
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

			"identity_number": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 40,
			},

			"age": bson.M{
				"bsonType": []string{"int", "long", "double"},
				"minimum":  1,
				"maximum":  120,
			},

			"contact": bson.M{
				"bsonType":  "string",
				"minLength": 7,
				"maxLength": 20,
			},

			"seat": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 10,
			},

			"bus_id": bson.M{
				"bsonType": "objectId",
			},

			"price": bson.M{
				"bsonType": []string{"int", "long", "double"},
				"minimum":  0,
			},

			"booking_date": bson.M{
				"bsonType": "date",
			},

			"user_id": bson.M{
				"bsonType": "objectId",
			},
		},
	},
}
