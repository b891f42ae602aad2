package utils

import (
	"log/slog"
	"os"
	"time"
)

type Config struct {
	port       string
	sqlitePath string

	location *time.Location

	calendarUpdateInterval   time.Duration
	metricCollectionInterval time.Duration
}

func NewConfig() *Config {
	return &Config{
		port: func() string {
			port := os.Getenv("PORT")
			if port == "" {
				port = "8080"
			}
			slog.Debug("env", "PORT", port)
			return port
		}(),
		sqlitePath: func() string {
			sqlitePath := os.Getenv("SQLITE_PATH")
			if sqlitePath == "" {
				sqlitePath = "./sqlite.db"
			}
			slog.Debug("env", "SQLITE_PATH", sqlitePath)
			return sqlitePath
		}(),

		location: func() *time.Location {
			timezoneStr := os.Getenv("TIMEZONE")
			var loc *time.Location
			var err error
			switch timezoneStr {
			case "":
				slog.Warn("TIMEZONE is not set, using local timezone", "timezone", time.Local)
				loc = time.Local
			case "UTC":
				loc = time.UTC
			default:
				loc, err = time.LoadLocation(timezoneStr)
				if err != nil {
					slog.Error("invalid timezone", "timezone", timezoneStr, "error", err)
					os.Exit(1)
				}
			}
			slog.Debug("env", "TIMEZONE", timezoneStr)
			return loc
		}(),

		calendarUpdateInterval: func() time.Duration {
			calendarUpdateInterval := os.Getenv("CALENDAR_UPDATE_INTERVAL")
			if calendarUpdateInterval == "" {
				calendarUpdateInterval = "15m"
			}
			duration, err := time.ParseDuration(calendarUpdateInterval)
			if err != nil {
				slog.Error("invalid CALENDAR_UPDATE_INTERVAL", "error", err)
				os.Exit(1)
			}
			slog.Debug("env", "CALENDAR_UPDATE_INTERVAL", calendarUpdateInterval, "duration", duration)
			return duration
		}(),
		metricCollectionInterval: func() time.Duration {
			metricCollectionInterval := os.Getenv("METRIC_COLLECTION_INTERVAL")
			if metricCollectionInterval == "" {
				metricCollectionInterval = "1m"
			}
			duration, err := time.ParseDuration(metricCollectionInterval)
			if err != nil {
				slog.Error("invalid METRIC_COLLECTION_INTERVAL", "error", err)
				os.Exit(1)
			}
			slog.Debug("env", "METRIC_COLLECTION_INTERVAL", metricCollectionInterval, "duration", duration)
			return duration
		}(),
	}
}

// Get PORT env, default to 8080
func (c *Config) GetPort() string {
	return c.port
}

// Get SQLITE_PATH env, default to ./sqlite.db
func (c *Config) GetSqlitePath() string {
	return c.sqlitePath
}

// Get TIMEZONE env
func (c *Config) GetLocation() *time.Location {
	return c.location
}

// Get CALENDAR_UPDATE_INTERVAL env, default to 15m
func (c *Config) GetCalendarUpdateInterval() time.Duration {
	return c.calendarUpdateInterval
}

// Get METRIC_COLLECTION_INTERVAL env, default to 1m
func (c *Config) GetMetricCollectionInterval() time.Duration {
	return c.metricCollectionInterval
}
