package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	StoreMongo     = "mongo"
	StoreFirestore = "firestore"

	BlobFirebase   = "firebase"
	BlobCloudinary = "cloudinary"
)

type Config struct {
	Port        string
	AppEnv      string
	LogLevel    string
	FrontendURL string

	StoreBackend string
	MongoURI     string
	MongoDB      string

	BlobBackend                string
	FirebaseServiceAccountPath string
	FirebaseProjectID          string
	FirebaseStorageBucket      string
	CloudinaryCloudName        string
	CloudinaryAPIKey           string
	CloudinaryAPISecret        string
	CloudinaryUploadFolder     string

	JWTSecret          string
	GuestTokenTTLHours int

	RabbitMQURL string

	DuplicateRadiusMeters float64
	PhotoSweepMinutes     int
	RateLimitPerMinute    int
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found")
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		AppEnv:      getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		FrontendURL: getEnv("FRONTEND_URL", "*"),

		StoreBackend: getEnv("STORE_BACKEND", StoreMongo),
		MongoURI:     getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:      getEnv("MONGO_DB", "reportabaches"),

		BlobBackend:                getEnv("BLOB_BACKEND", BlobFirebase),
		FirebaseServiceAccountPath: getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", "serviceAccount.json"),
		FirebaseProjectID:          getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseStorageBucket:      getEnv("FIREBASE_STORAGE_BUCKET", ""),
		CloudinaryCloudName:        getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:           getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret:        getEnv("CLOUDINARY_API_SECRET", ""),
		CloudinaryUploadFolder:     getEnv("CLOUDINARY_UPLOAD_FOLDER", ""),

		JWTSecret:          getEnv("JWT_SECRET", "secret"),
		GuestTokenTTLHours: getEnvInt("GUEST_TOKEN_TTL_HOURS", 24*30),

		RabbitMQURL: getEnv("RABBITMQ_URL", ""),

		DuplicateRadiusMeters: getEnvFloat("DUPLICATE_RADIUS_METERS", 20),
		PhotoSweepMinutes:     getEnvInt("PHOTO_SWEEP_MINUTES", 15),
		RateLimitPerMinute:    getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("config: %s=%q is not an integer, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f <= 0 {
		log.Printf("config: %s=%q is not a positive number, using %v", key, value, defaultValue)
		return defaultValue
	}
	return f
}
