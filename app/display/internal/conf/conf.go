package conf

type Bootstrap struct {
	Server *Server
	Data   *Data
	Auth   *Auth
	Pulse  *Pulse
}

type Auth struct {
	JwtKey string
}

type Server struct {
	Http *HTTP
}

type HTTP struct {
	Addr    string
	Timeout string
}

type Data struct {
	Database *Database
}

type Database struct {
	Driver string
	Source string
}

type Pulse struct {
	Llm         *LLM         `json:"llm"`
	Dashboard   *Dashboard   `json:"dashboard"`
	Persona     string       `json:"persona"`
	Companies   []string     `json:"companies"`
	Log         *Log         `json:"log"`
	Concurrency *Concurrency `json:"concurrency"`
	Db          *DB          `json:"db"`
	Lexicon     *Lexicon     `json:"lexicon"`
	Cache       *Cache       `json:"cache"`
}

type LLM struct {
	BaseUrl string `json:"base_url"`
	ApiKey  string `json:"api_key"`
	Model   string `json:"model"`
}

type Dashboard struct {
	BaseUrl        string `json:"base_url"`
	ApiKey         string `json:"api_key"`
	TimeoutSeconds int32  `json:"timeout_seconds"`
}

type Log struct {
	Level string `json:"level"`
	File  string `json:"file"`
}

type Concurrency struct {
	Qps int32 `json:"qps"`
	Rpm int32 `json:"rpm"`
}

type DB struct {
	Host     string `json:"host"`
	Port     int32  `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type Lexicon struct {
	Path string `json:"path"`
}

type Cache struct {
	TtlSeconds int32 `json:"ttl_seconds"`
}
