package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Upstream
	BaseURL   string
	Keywords  []string
	Referer   string
	Origin    string
	UserAgent string

	// Fetching
	Threads        int
	RequestTimeout time.Duration
	MaxRetries     int
	BackoffBase    time.Duration
	BackoffCap     time.Duration
	Jitter         time.Duration

	// Store
	MasterFile string

	// SFTP (optional artifact upload)
	SFTPHost                  string
	SFTPPort                  int
	SFTPUser                  string
	SFTPPass                  string
	SFTPDir                   string
	SFTPInsecureIgnoreHostKey bool
}

// Load reads everything from the environment. BASE_URL and KEYWORDS are
// required; the binaries fail at startup when they are missing.
func Load() Config {
	return Config{
		// Upstream
		BaseURL:  os.Getenv("BASE_URL"),
		Keywords: SplitKeywords(os.Getenv("KEYWORDS")),
		Referer:  getenv("REFERER", "https://example.com/"),
		Origin:   getenv("ORIGIN", "https://example.com"),
		UserAgent: getenv("USER_AGENT",
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) "+
				"AppleWebKit/537.36 (KHTML, like Gecko) "+
				"Chrome/143.0.0.0 Safari/537.36"),

		// Fetching
		Threads:        getenvInt("THREADS", 5),
		RequestTimeout: time.Duration(getenvInt("REQUEST_TIMEOUT", 20)) * time.Second,
		MaxRetries:     getenvInt("MAX_RETRIES", 4),
		BackoffBase:    getenvMillis("BACKOFF_BASE_MS", 700),
		BackoffCap:     getenvMillis("BACKOFF_CAP_MS", 30000),
		Jitter:         getenvMillis("JITTER_MS", 750),

		// Store
		MasterFile: getenv("MASTER_FILE", "master_courses.json"),

		// SFTP
		SFTPHost:                  os.Getenv("SFTP_HOST"),
		SFTPPort:                  getenvInt("SFTP_PORT", 22),
		SFTPUser:                  os.Getenv("SFTP_USER"),
		SFTPPass:                  os.Getenv("SFTP_PASS"),
		SFTPDir:                   getenv("SFTP_DIR", "/inbound"),
		SFTPInsecureIgnoreHostKey: getenvBool("SFTP_INSECURE_IGNORE_HOSTKEY", true),
	}
}

// SplitKeywords parses the comma-separated KEYWORDS value: trimmed,
// lowercased, empties dropped.
func SplitKeywords(s string) []string {
	var out []string
	for _, k := range strings.Split(s, ",") {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			out = append(out, k)
		}
	}
	return out
}

func getenv(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getenvBool(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvMillis(k string, defMillis int) time.Duration {
	return time.Duration(getenvInt(k, defMillis)) * time.Millisecond
}
