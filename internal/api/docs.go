package api

import "github.com/swaggo/swag"

// SwaggerInfo describes the HTTP API for swagger UI under /swagger/.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "SurvivorLens API",
	Description:      "Filter, aggregate and export the Titanic passenger table.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

const filterParams = `
            {"name": "sex", "in": "query", "type": "array", "items": {"type": "string"}, "collectionFormat": "multi"},
            {"name": "class", "in": "query", "type": "array", "items": {"type": "integer"}, "collectionFormat": "multi"},
            {"name": "port", "in": "query", "type": "array", "items": {"type": "string"}, "collectionFormat": "multi", "description": "empty value selects passengers with no recorded port"},
            {"name": "age_min", "in": "query", "type": "number"},
            {"name": "age_max", "in": "query", "type": "number"},
            {"name": "fare_min", "in": "query", "type": "number"},
            {"name": "fare_max", "in": "query", "type": "number"},
            {"name": "family", "in": "query", "type": "boolean"}`

const errorResponses = `
          "400": {"description": "malformed parameters", "schema": {"$ref": "#/definitions/Error"}},
          "422": {"description": "dataset has an invalid structure", "schema": {"$ref": "#/definitions/Error"}},
          "502": {"description": "dataset source unavailable", "schema": {"$ref": "#/definitions/Error"}}`

const docTemplate = `{
  "swagger": "2.0",
  "info": {
    "title": "{{.Title}}",
    "description": "{{escape .Description}}",
    "version": "{{.Version}}"
  },
  "basePath": "{{.BasePath}}",
  "produces": ["application/json"],
  "paths": {
    "/summary": {
      "get": {
        "summary": "Headline metrics for the filtered passengers",
        "parameters": [` + filterParams + `
        ],
        "responses": {
          "200": {"description": "OK"},` + errorResponses + `
        }
      }
    },
    "/aggregate": {
      "get": {
        "summary": "Survival rate grouped by one or two of Sex, Pclass, Embarked, Fare_Bin",
        "parameters": [
            {"name": "by", "in": "query", "required": true, "type": "array", "items": {"type": "string"}, "collectionFormat": "csv"},` + filterParams + `
        ],
        "responses": {
          "200": {"description": "OK"},` + errorResponses + `
        }
      }
    },
    "/fare-buckets": {
      "get": {
        "summary": "Survival rate per fare bucket in fixed bucket order",
        "parameters": [` + filterParams + `
        ],
        "responses": {
          "200": {"description": "OK"},` + errorResponses + `
        }
      }
    },
    "/histogram": {
      "get": {
        "summary": "Age histogram faceted by sex",
        "parameters": [
            {"name": "bins", "in": "query", "type": "integer"},` + filterParams + `
        ],
        "responses": {
          "200": {"description": "OK"},` + errorResponses + `
        }
      }
    },
    "/correlations": {
      "get": {
        "summary": "Pearson correlations among numeric columns",
        "parameters": [` + filterParams + `
        ],
        "responses": {
          "200": {"description": "OK"},` + errorResponses + `
        }
      }
    },
    "/estimate": {
      "get": {
        "summary": "Empirical survival frequency among comparable filtered passengers",
        "parameters": [
            {"name": "q_sex", "in": "query", "required": true, "type": "string"},
            {"name": "q_class", "in": "query", "required": true, "type": "integer"},
            {"name": "q_age", "in": "query", "required": true, "type": "number"},
            {"name": "q_fare", "in": "query", "required": true, "type": "number"},` + filterParams + `
        ],
        "responses": {
          "200": {"description": "OK; match is false when no passenger is comparable"},` + errorResponses + `
        }
      }
    },
    "/passengers.csv": {
      "get": {
        "summary": "Download the filtered passengers as CSV",
        "produces": ["text/csv"],
        "parameters": [` + filterParams + `
        ],
        "responses": {
          "200": {"description": "CSV attachment titanic_filtered.csv"},` + errorResponses + `
        }
      }
    }
  },
  "definitions": {
    "Error": {
      "type": "object",
      "properties": {"error": {"type": "string"}}
    }
  }
}`
