package upstream

// Config contains vendor API configuration.
//   - APIKey: sent as "Authorization: Bearer"; requests fail with a server error when empty
//   - ModelsURL / ChatURL: catalog and chat endpoints
//   - Host: optional Host header override
//   - Timeout: catalog request timeout in seconds; the chat stream has none
//   - StreamBuffer: capacity of the event channel between reader and consumer
type Config struct {
	APIKey         string `env:"UPSTREAM_API_KEY"`
	ModelsURL      string `env:"UPSTREAM_MODELS_URL"      envDefault:"http://localhost:9090/api/models"`
	ChatURL        string `env:"UPSTREAM_CHAT_URL"        envDefault:"http://localhost:9090/api/chat"`
	Host           string `env:"UPSTREAM_HOST"`
	UserAgent      string `env:"UPSTREAM_USER_AGENT"      envDefault:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"`
	Accept         string `env:"UPSTREAM_ACCEPT"          envDefault:"*/*"`
	AcceptLanguage string `env:"UPSTREAM_ACCEPT_LANGUAGE" envDefault:"en-US,en;q=0.9"`
	Timeout        int    `env:"UPSTREAM_TIMEOUT"         envDefault:"30"`
	StreamBuffer   int    `env:"UPSTREAM_STREAM_BUFFER"   envDefault:"16"`
}
