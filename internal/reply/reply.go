// Package reply holds the immutable per-language canned reply tables used by
// the routing pipeline: social answers, denial-handling prompts, escalation
// messages, retrieval fallbacks and the closing courtesy line.
//
// Tables are plain package-level maps built once at init; the pipeline never
// mutates them. Language tags follow classify.Detect: "vi", "en", "zh", "ru".
// Lookups fall back to English when a language has no entry.
package reply

// Supported language tags.
const (
	LangVI = "vi"
	LangEN = "en"
	LangZH = "zh"
	LangRU = "ru"
)

// Social reply keys.
const (
	KeyGreeting  = "greeting"
	KeyThanks    = "thanks"
	KeyGoodbye   = "goodbye"
	KeyChitchat  = "chitchat"
	KeyWhoAreYou = "who_are_you"
	KeyWhatDoing = "what_doing"
)

var social = map[string]map[string]string{
	LangVI: {
		KeyGreeting:  "Chào bạn 👋",
		KeyThanks:    "Không có gì, rất vui được giúp bạn!",
		KeyGoodbye:   "Tạm biệt nhé 👋",
		KeyChitchat:  "Chào bạn! Mình có thể hỗ trợ bạn về vấn đề gì hôm nay?",
		KeyWhoAreYou: "Mình là trợ lý AI hỗ trợ khách hàng của công ty ạ. Rất vui được gặp bạn!",
		KeyWhatDoing: "Mình đang ở đây chờ hỗ trợ bạn nè 😄 Bạn cần giúp gì hôm nay?",
	},
	LangEN: {
		KeyGreeting:  "Hello 👋",
		KeyThanks:    "You're welcome!",
		KeyGoodbye:   "Goodbye 👋",
		KeyChitchat:  "Hi there! How can I help you today?",
		KeyWhoAreYou: "I'm your AI customer support assistant. Nice to meet you!",
		KeyWhatDoing: "Just here waiting to assist you 😄 What's on your mind?",
	},
	LangZH: {
		KeyGreeting:  "你好 👋",
		KeyThanks:    "不客气！",
		KeyGoodbye:   "再见 👋",
		KeyChitchat:  "你好！今天我能帮您什么？",
		KeyWhoAreYou: "我是您的AI客户支持助手，很高兴认识您！",
		KeyWhatDoing: "我在这里等着帮您呢 😄 您有什么需要？",
	},
	LangRU: {
		KeyGreeting:  "Привет 👋",
		KeyThanks:    "Пожалуйста!",
		KeyGoodbye:   "До свидания 👋",
		KeyChitchat:  "Привет! Чем могу помочь сегодня?",
		KeyWhoAreYou: "Я ваш AI-ассистент поддержки. Приятно познакомиться!",
		KeyWhatDoing: "Я здесь, чтобы помочь вам 😄 О чем думаете?",
	},
}

// Social returns the canned social reply for the given language and key.
// Unknown languages fall back to English; unknown keys return the chitchat line.
func Social(lang, key string) string {
	m, ok := social[lang]
	if !ok {
		m = social[LangEN]
	}
	if s, ok := m[key]; ok {
		return s
	}
	return m[KeyChitchat]
}

var denyClarify = map[string]string{
	LangVI: "Có thể mình chưa hiểu đúng. Bạn có thể nói rõ hơn không ạ? 😊",
	LangEN: "Maybe I misunderstood. Could you clarify? 😊",
	LangZH: "可能我没有理解清楚。您能再说明一下吗？ 😊",
	LangRU: "Возможно, я неправильно понял. Не могли бы вы уточнить? 😊",
}

var denyClarifyNoContext = map[string]string{
	LangVI: "Mình chưa rõ bạn đang phủ định phần nào. Bạn có thể nói rõ hơn không ạ? 😊",
	LangEN: "I'm not sure what part you're disagreeing with. Could you clarify? 😊",
	LangZH: "我不太确定您不同意哪一部分。您能再说明一下吗？ 😊",
	LangRU: "Я не совсем понял, с чем именно вы не согласны. Не могли бы вы уточнить? 😊",
}

var escalation = map[string]string{
	LangVI: "Mình xin lỗi vì chưa hỗ trợ đúng. Mình sẽ chuyển bạn sang bộ phận CSKH nhé. Bạn để lại thông tin để bên mình liên hệ hỗ trợ ạ 😊",
	LangEN: "Sorry I couldn't get it right yet. I'll escalate to our support team. Please leave your details 😊",
	LangZH: "很抱歉目前还没能正确帮助您。我会将您的问题转交给我们的支持团队。请留下您的联系方式 😊",
	LangRU: "Извините, мне пока не удалось помочь правильно. Я передам ваш вопрос нашей службе поддержки. Пожалуйста, оставьте свои контактные данные 😊",
}

var alternativeIntro = map[string]string{
	LangVI: "Có thể mình đã hiểu chưa đúng trường hợp của bạn.\nTrong tài liệu hiện có, mình thấy các thông tin sau:\n",
	LangEN: "Maybe I didn't understand your case correctly.\nIn the current documentation, I found the following:\n",
	LangZH: "可能我没完全理解您的情况。\n在现有文档中，我找到以下信息：\n",
	LangRU: "Возможно, я не совсем понял ваш случай.\nВ документации я нашел следующее:\n",
}

var alternativeQuestion = map[string]string{
	LangVI: "\nBạn đang quan tâm trường hợp nào để mình hỗ trợ chính xác hơn nhé?",
	LangEN: "\nWhich case are you referring to so I can assist more accurately?",
	LangZH: "\n您关心哪个情况，让我更准确地帮助您？",
	LangRU: "\nКакой случай вас интересует, чтобы я мог помочь точнее?",
}

var hardCaseIntro = map[string]string{
	LangVI: "Có thể bạn đang nói tới một trong các trường hợp sau:\n",
	LangEN: "You might be referring to one of these cases:\n",
	LangZH: "您可能指的是以下情况之一：\n",
	LangRU: "Возможно, вы имеете в виду один из следующих случаев:\n",
}

var hardCaseQuestion = map[string]string{
	LangVI: "\nBạn đang quan tâm hướng trả lời nào?",
	LangEN: "\nWhich case are you referring to?",
	LangZH: "\n您关心的是哪一种情况？",
	LangRU: "\nКакой вариант вас интересует?",
}

var hardCases = map[string][]string{
	LangVI: {
		"Điều khiển profile từ tool khác qua API",
		"Kết nối profile với Puppeteer / Playwright",
		"Xây tool riêng để quản lý profile",
	},
	LangEN: {
		"Control profile from another tool via API",
		"Connect profile with Puppeteer / Playwright",
		"Build your own tool to manage profiles",
	},
	LangZH: {
		"通过 API 从其他工具控制配置文件",
		"将配置文件连接到 Puppeteer / Playwright",
		"构建自己的工具来管理配置文件",
	},
	LangRU: {
		"Управление профилем из другого инструмента через API",
		"Подключение профиля к Puppeteer / Playwright",
		"Создание собственного инструмента для управления профилями",
	},
}

var closing = map[string]string{
	LangVI: "Bạn cần hỗ trợ thêm gì không ạ? 😊",
	LangEN: "Anything else I can help with? 😊",
	LangZH: "还有什么我能帮您的吗？ 😊",
	LangRU: "Чем еще могу помочь? 😊",
}

var notFound = map[string]string{
	LangVI: "Mình chưa tìm thấy thông tin phù hợp trong tài liệu hiện tại. Bạn có thể mô tả chi tiết hơn được không ạ? 😊",
	LangEN: "I couldn't find matching information in the current documentation. Could you describe your question in more detail? 😊",
	LangZH: "我在现有文档中没有找到相关信息。您能再详细描述一下吗？ 😊",
	LangRU: "Я не нашел подходящей информации в текущей документации. Не могли бы вы описать вопрос подробнее? 😊",
}

var sourceProbe = map[string]string{
	LangVI: "Mình trả lời dựa trên tài liệu hướng dẫn chính thức của Hidemium, nên không chia sẻ chi tiết về file hay nguồn nội bộ được ạ. Bạn cứ hỏi về sản phẩm nhé! 😊",
	LangEN: "I answer based on the official Hidemium documentation, so I can't share details about internal files or sources. Feel free to ask about the product! 😊",
	LangZH: "我是根据 Hidemium 官方文档回答的，无法透露内部文件或来源的细节。欢迎直接提问产品相关问题！ 😊",
	LangRU: "Я отвечаю на основе официальной документации Hidemium и не могу раскрывать детали внутренних файлов или источников. Спрашивайте о продукте! 😊",
}

var busy = map[string]string{
	LangVI: "Hệ thống đang bận, bạn thử lại sau chút nhé 😊",
	LangEN: "The system is a bit busy right now, please try again shortly 😊",
	LangZH: "系统现在有点忙，请稍后再试 😊",
	LangRU: "Система сейчас занята, попробуйте еще раз чуть позже 😊",
}

// HidemiumFallback is the hard-coded explanatory answer used when retrieval
// produces nothing usable for a Hidemium question. Always Vietnamese; output
// translation happens downstream like any other answer.
const HidemiumFallback = "Hidemium API là bộ API cho phép bạn tạo, quản lý và khởi chạy " +
	"các browser profile Hidemium từ tool bên ngoài. " +
	"API thường dùng để tích hợp với Puppeteer, Playwright " +
	"hoặc automation framework riêng.\n\n" +
	"Bạn đang muốn:\n" +
	"• Điều khiển profile qua API?\n" +
	"• Kết nối với Puppeteer/Playwright?\n" +
	"• Hay build tool riêng dùng profile Hidemium?"

// EmptyPrompt is returned when the inbound message is blank.
const EmptyPrompt = "Please say something 😅"

// TransferNotice is the bot turn persisted when a live hand-off begins.
const TransferNotice = "Đang kết nối với nhân viên CSKH..."

// BadwordResponses are the deflection replies for messages caught by the
// badword filter. One is picked at random (injectable pick function).
var BadwordResponses = []string{
	"Ủa đại ca chửi em hả? Em buồn 5 giây thôi nha",
	"Trời ơi đại ca nóng tính quá, em sợ á",
	"Đại ca ơi bình tĩnh sống lâu trăm tuổi nè",
	"Má ơi em bị chửi rồi, đau lòng quá đi mất",
}

// QuickReplies are the generic short-message replies per language.
var QuickReplies = map[string][]string{
	LangVI: {
		"Chào bạn! Mình có thể hỗ trợ gì?",
		"Xin chào! Rất vui được trò chuyện cùng bạn.",
	},
	LangEN: {
		"Hello! How can I help you?",
		"Hi there! I'm here to help.",
	},
}

// WhoAmI is the identity quick reply per language.
var WhoAmI = map[string]string{
	LangVI: "Mình là trợ lý AI được thiết kế để hỗ trợ bạn tra cứu và giải đáp thông tin.",
	LangEN: "I'm an AI assistant designed to help you find information and answers.",
}

func lookup(m map[string]string, lang string) string {
	if s, ok := m[lang]; ok {
		return s
	}
	return m[LangEN]
}

// DenyClarify returns the first-denial clarification question.
func DenyClarify(lang string) string { return lookup(denyClarify, lang) }

// DenyClarifyNoContext is used when there is no last query to ground on.
func DenyClarifyNoContext(lang string) string { return lookup(denyClarifyNoContext, lang) }

// Escalation returns the third-denial hand-off message.
func Escalation(lang string) string { return lookup(escalation, lang) }

// AlternativeIntro opens the multi-case disambiguation answer.
func AlternativeIntro(lang string) string { return lookup(alternativeIntro, lang) }

// AlternativeQuestion closes the multi-case disambiguation answer.
func AlternativeQuestion(lang string) string { return lookup(alternativeQuestion, lang) }

// HardCaseIntro opens the static alternative-cases answer.
func HardCaseIntro(lang string) string { return lookup(hardCaseIntro, lang) }

// HardCaseQuestion closes the static alternative-cases answer.
func HardCaseQuestion(lang string) string { return lookup(hardCaseQuestion, lang) }

// HardCases returns the static domain alternative cases.
func HardCases(lang string) []string {
	if cases, ok := hardCases[lang]; ok {
		return cases
	}
	return hardCases[LangEN]
}

// Closing returns the courtesy line appended to every knowledge answer.
func Closing(lang string) string { return lookup(closing, lang) }

// NotFound returns the generic empty-retrieval fallback.
func NotFound(lang string) string { return lookup(notFound, lang) }

// Busy returns the localized LLM-timeout/busy message.
func Busy(lang string) string { return lookup(busy, lang) }

// SourceProbe deflects questions about where the bot's answers come from.
func SourceProbe(lang string) string { return lookup(sourceProbe, lang) }

// CaseLabel renders one labelled case line for disambiguation answers.
// Labels run A, B, C... matching the original answer format.
func CaseLabel(lang string, i int, text string) string {
	label := string(rune('A' + i))
	if lang == LangVI {
		return "• Trường hợp " + label + ": " + text + "\n"
	}
	return "• Case " + label + ": " + text + "\n"
}
