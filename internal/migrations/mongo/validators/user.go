package validators

import "go.mongodb.org/mongo-driver/bson"

var UserValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"first_name",
			"last_name",
			"email",
			"password",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"first_name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 60,
			},

			"last_name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 60,
			},

			"email": bson.M{
				"bsonType":  "string",
				"maxLength": 254,
			},

			// bcrypt digest, never the plaintext
			"password": bson.M{
				"bsonType":  "string",
				"minLength": 59,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
