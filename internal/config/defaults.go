package config

const (
	defaultAnkiURL            = "http://127.0.0.1:8765"
	defaultAnkiRequestTimeout = 60

	defaultEspeakBinary = "espeak"

	defaultSourceField = "Synonyms"
	defaultTargetField = "Synonyms"
	defaultVoice       = "en-us"
	defaultNoteBatch   = 200
	defaultUpdateBatch = 50

	defaultSourceSegment = "::word2mean"
	defaultTargetSegment = "::exercise"
	defaultCardOrd       = 2
	defaultOnlyFromDeck  = "Default"
	defaultInfoBatch     = 200

	defaultDataDir = "~/.local/share/ankisync"

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Anki: Anki{
			URL:            defaultAnkiURL,
			RequestTimeout: defaultAnkiRequestTimeout,
		},
		Espeak: Espeak{
			Binary: defaultEspeakBinary,
		},
		Sync: Sync{
			SourceField: defaultSourceField,
			TargetField: defaultTargetField,
			Voice:       defaultVoice,
			NoteBatch:   defaultNoteBatch,
			UpdateBatch: defaultUpdateBatch,
		},
		Relocate: Relocate{
			SourceSegment: defaultSourceSegment,
			TargetSegment: defaultTargetSegment,
			CardOrd:       defaultCardOrd,
			OnlyFromDeck:  defaultOnlyFromDeck,
			InfoBatch:     defaultInfoBatch,
		},
		Paths: Paths{
			DataDir: defaultDataDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
