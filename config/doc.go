// Package config loads layered configuration for catapult binaries.
//
// Values come from a YAML file, an optional dotenv file and the process
// environment, in increasing precedence, and are decoded with viper into a
// struct that embeds ServiceConfig. Environment variables map onto nested
// keys by splitting on underscores, so S3_BUCKET sets s3.bucket and
// LOGGING_LEVEL sets logging.level.
//
//	var cfg AppConfig
//	err := config.LoadAndValidate("catapult", &cfg, config.WithConfigFile(path))
package config
