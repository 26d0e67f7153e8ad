package config

import (
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type MongoConfig struct {
	URI    string `mapstructure:"uri"`
	DBName string `mapstructure:"dbName"`
}

type JWTConfig struct {
	Secret     string `mapstructure:"secret"`
	Expiration string `mapstructure:"expiration"`
}

type S3Config struct {
	Bucket           string `mapstructure:"bucket"`
	Region           string `mapstructure:"region"`
	AccessKeyID      string `mapstructure:"accessKeyID"`
	SecretAccessKey  string `mapstructure:"secretAccessKey"`
	CloudFrontDomain string `mapstructure:"cloudFrontDomain"`
}

type KafkaConfig struct {
	BrokerURL string `mapstructure:"brokerURL"`
	Topic     string `mapstructure:"topic"`
}

type MQTTConfig struct {
	BrokerURL string `mapstructure:"brokerURL"`
	ClientID  string `mapstructure:"clientID"`
	Topic     string `mapstructure:"topic"`
}

type GPSConfig struct {
	// SampleInterval is a Go duration string, e.g. "30s".
	SampleInterval string `mapstructure:"sampleInterval"`
}

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Mongo  MongoConfig  `mapstructure:"mongo"`
	JWT    JWTConfig    `mapstructure:"jwt"`
	S3     S3Config     `mapstructure:"s3"`
	Kafka  KafkaConfig  `mapstructure:"kafka"`
	MQTT   MQTTConfig   `mapstructure:"mqtt"`
	GPS    GPSConfig    `mapstructure:"gps"`
}

// LoadConfig reads config.yaml from path and overlays environment variables.
// A missing file is fine; the environment alone can carry the full config.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.AutomaticEnv()

	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("mongo.uri", "MONGO_URI")
	viper.BindEnv("mongo.dbName", "MONGO_DBNAME")
	viper.BindEnv("jwt.secret", "JWT_SECRET")
	viper.BindEnv("jwt.expiration", "JWT_EXPIRATION")
	viper.BindEnv("s3.bucket", "S3_BUCKET")
	viper.BindEnv("s3.region", "S3_REGION")
	viper.BindEnv("s3.accessKeyID", "S3_ACCESS_KEY_ID")
	viper.BindEnv("s3.secretAccessKey", "S3_SECRET_ACCESS_KEY")
	viper.BindEnv("s3.cloudFrontDomain", "S3_CLOUDFRONT_DOMAIN")
	viper.BindEnv("kafka.brokerURL", "KAFKA_BROKER_URL")
	viper.BindEnv("kafka.topic", "KAFKA_TOPIC")
	viper.BindEnv("mqtt.brokerURL", "MQTT_BROKER_URL")
	viper.BindEnv("mqtt.clientID", "MQTT_CLIENT_ID")
	viper.BindEnv("mqtt.topic", "MQTT_TOPIC")
	viper.BindEnv("gps.sampleInterval", "GPS_SAMPLE_INTERVAL")

	err = viper.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return
		}
	}

	err = viper.Unmarshal(&config)
	return
}
