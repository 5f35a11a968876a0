package config

// configSchema is the structural gate for configuration files. YAML
// input is normalized to JSON before being checked against it, so one
// schema covers both formats. Semantic rules that a schema cannot
// express (duplicate names, pattern parameter interplay) live in
// Validate.
const configSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "surge run configuration",
  "type": "object",
  "additionalProperties": false,
  "$defs": {
    "duration": {
      "type": "string",
      "pattern": "^-?([0-9]+(\\.[0-9]+)?(ns|us|µs|ms|s|m|h))+$"
    },
    "stringMap": {
      "type": "object",
      "additionalProperties": { "type": "string" }
    }
  },
  "properties": {
    "name": { "type": "string" },
    "duration": { "$ref": "#/$defs/duration" },
    "warmup": { "$ref": "#/$defs/duration" },
    "max_concurrent": { "type": "integer", "minimum": 1 },
    "queue_capacity": { "type": "integer", "minimum": 0 },
    "console": { "type": "boolean" },
    "grace_timeout": { "$ref": "#/$defs/duration" },
    "exec_timeout": { "$ref": "#/$defs/duration" },
    "seed": { "type": "integer" },
    "rate": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "pattern": {
          "enum": ["constant", "ramp", "spike", "burst", "steady", "step", "chaos", "wave"]
        },
        "target": { "type": "number" },
        "jitter": { "type": "number" },
        "start": { "type": "number" },
        "end": { "type": "number" },
        "steps": { "type": "integer" },
        "baseline": { "type": "number" },
        "peak": { "type": "number" },
        "min": { "type": "number" },
        "max": { "type": "number" },
        "duration": { "$ref": "#/$defs/duration" },
        "interval": { "$ref": "#/$defs/duration" },
        "delay": { "$ref": "#/$defs/duration" },
        "period": { "$ref": "#/$defs/duration" },
        "distribution": { "enum": ["uniform", "gaussian", "exponential"] },
        "waveform": { "enum": ["sine", "square", "sawtooth"] }
      },
      "required": ["pattern"]
    },
    "workloads": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "additionalProperties": false,
        "properties": {
          "name": { "type": "string", "minLength": 1 },
          "type": { "enum": ["http", "websocket"] },
          "weight": { "type": "number", "exclusiveMinimum": 0 },
          "http": {
            "type": "object",
            "additionalProperties": false,
            "properties": {
              "method": { "type": "string" },
              "url": { "type": "string", "minLength": 1 },
              "headers": { "$ref": "#/$defs/stringMap" },
              "body": { "type": "string" },
              "expect_status": { "type": "integer", "minimum": 100, "maximum": 599 },
              "checks": {
                "type": "array",
                "items": {
                  "type": "object",
                  "additionalProperties": false,
                  "properties": {
                    "path": { "type": "string", "minLength": 1 },
                    "equals": { "type": "string" }
                  },
                  "required": ["path", "equals"]
                }
              },
              "timeout": { "$ref": "#/$defs/duration" }
            },
            "required": ["url"]
          },
          "websocket": {
            "type": "object",
            "additionalProperties": false,
            "properties": {
              "url": { "type": "string", "minLength": 1 },
              "headers": { "$ref": "#/$defs/stringMap" },
              "message": { "type": "string" },
              "expect": { "type": "string" }
            },
            "required": ["url"]
          }
        },
        "required": ["name"]
      }
    },
    "report": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "format": { "enum": ["console", "json", "html"] },
        "output": { "type": "string" }
      }
    },
    "history": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "enabled": { "type": "boolean" },
        "path": { "type": "string" }
      }
    },
    "settings": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "base_url": { "type": "string" },
        "timeout": { "$ref": "#/$defs/duration" },
        "insecure_skip_verify": { "type": "boolean" },
        "headers": { "$ref": "#/$defs/stringMap" },
        "variables": { "$ref": "#/$defs/stringMap" }
      }
    }
  },
  "required": ["rate", "workloads"]
}`
