package i18n

// Translator retrieves localized messages for error codes.
// data provides optional metadata to embed in the message (for example,
// "field" or "model").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	switch t.lang {
	case "ja":
		switch code {
		case "unresolvable_type":
			return "型を解決できません"
		case "missing_build_argument":
			return "ビルド引数が不足しています"
		case "directive_invocation":
			return "ディレクティブの呼び出しに失敗しました"
		case "recursion_limit":
			return "再帰の上限を超えました"
		case "argument_collision":
			return "キーワード引数が重複しています"
		case "unknown_override":
			return "未知の上書きキーです"
		case "key_exhausted":
			return "一意なキーを生成できません"
		case "invalid_descriptor":
			return "記述子が不正です"
		case "invalid_config":
			return "設定が不正です"
		}
	default: // "en"
		switch code {
		case "unresolvable_type":
			return "type cannot be resolved"
		case "missing_build_argument":
			return "missing build argument"
		case "directive_invocation":
			return "directive invocation failed"
		case "recursion_limit":
			return "recursion limit exceeded"
		case "argument_collision":
			return "keyword argument collision"
		case "unknown_override":
			return "unknown override key"
		case "key_exhausted":
			return "unique keys exhausted"
		case "invalid_descriptor":
			return "invalid descriptor"
		case "invalid_config":
			return "invalid config"
		}
	}
	return code
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
