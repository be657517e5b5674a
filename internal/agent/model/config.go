package model

// ================ Config ================
type ConversationConfig struct {
	TTL        string `envconfig:"CONVERSATION_TTL" default:"30m"`
	MaxTurns   int    `envconfig:"CONVERSATION_MAX_TURNS" default:"5"`
	TopicLimit int    `envconfig:"CONVERSATION_TOPIC_LIMIT" default:"10"`
	Backend    string `envconfig:"SESSION_BACKEND" default:"redis"`
}

type RephraseModelConfig struct {
	Enabled     bool    `envconfig:"REPHRASE_ENABLED" default:"true"`
	Model       string  `envconfig:"REPHRASE_MODEL" default:"gemini-2.5-flash-lite"`
	MaxTokens   int     `envconfig:"REPHRASE_MAX_TOKENS" default:"800"`
	Temperature float32 `envconfig:"REPHRASE_TEMPERATURE" default:"0"`
}

type EmbeddingConfig struct {
	Model      string `envconfig:"EMBEDDING_MODEL" default:"gemini-embedding-001"`
	TaskType   string `envconfig:"EMBEDDING_TASK_TYPE" default:"RETRIEVAL_QUERY"`
	Dimensions int    `envconfig:"EMBEDDING_DIMENSIONS" default:"768"`
}

type StoreConfig struct {
	CustomerCollection string `envconfig:"CUSTOMER_COLLECTION" default:"nasabah"`
	HospitalCollection string `envconfig:"HOSPITAL_COLLECTION" default:"rs_rekanan"`
	DocumentBackend    string `envconfig:"DOCUMENT_BACKEND" default:"postgres"`
}
