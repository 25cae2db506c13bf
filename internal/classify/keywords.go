package classify

import (
	"strings"
	"unicode"
)

// productKeywords mark a message as a product question that should go
// straight to retrieval. Every phrase is anchored on the product name so
// generic tech words never misroute small talk into the knowledge flow.
var productKeywords = []string{
	"hidemium", "api hidemium", "hidemium api", "hidemium là gì",
	"dịch vụ hidemium", "hidemium proxy", "ẩn danh hidemium",
	"what is hidemium", "tell me about hidemium",
}

// denialKeywords flag a rejection of the previous answer, per language.
// Matching takes the union; the sets are disjoint across languages.
var denialKeywords = map[string][]string{
	"vi": {"sai rồi", "không đúng", "không phải", "tôi không muốn", "không phải vậy", "lại sai"},
	"en": {"not correct", "wrong", "that's wrong", "incorrect", "not right", "not what i want", "nope", "that's not it"},
	"zh": {"不对", "错了", "不是这样"},
	"ru": {"неправильно", "не то", "ошибка"},
}

// sourceProbeKeywords flag attempts to probe where the bot's answers come
// from (authorship, underlying files, training data).
var sourceProbeKeywords = []string{
	"ai viết", "ai tạo ra", "file nào", "tài liệu nào", "nguồn nào",
	"lấy từ đâu", "dữ liệu từ đâu", "which file", "what file",
	"who wrote", "which document", "where do you get", "what source",
	"training data",
}

// supportKeywords flag a request that needs a human: explicit asks for an
// operator plus commerce topics (orders, shipping, payment, warranty) the
// documentation index cannot answer.
var supportKeywords = []string{
	"cskh", "nhân viên", "người thật", "gặp người", "zalo", "facebook",
	"hotline", "gọi", "liên hệ", "ship", "giao", "mua", "đặt", "đặt hàng",
	"giao hàng", "vận chuyển", "đổi trả", "bảo hành", "giá", "bao nhiêu",
	"tiền", "khuyến mãi", "thanh toán", "hóa đơn", "lỗi", "hỏng",
	"khiếu nại", "đơn hàng", "chuyển khoản", "cod", "size", "còn hàng",
	"human support", "talk to a human", "real person", "live agent",
}

func containsAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// containsAnyBounded matches multi-word phrases as substrings and single
// words on token boundaries, so short triggers like "cod" or "giá" never
// fire inside longer words.
func containsAnyBounded(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	tokens := tokenize(lower)
	for _, kw := range keywords {
		if strings.ContainsRune(kw, ' ') {
			if strings.Contains(lower, kw) {
				return true
			}
			continue
		}
		for _, tok := range tokens {
			if tok == kw {
				return true
			}
		}
	}
	return false
}

func tokenize(lower string) []string {
	return strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// ProductQuestion reports whether the message asks about the product.
func ProductQuestion(text string) bool { return containsAny(text, productKeywords) }

// Denial reports whether the message rejects the previous answer.
func Denial(text string) bool {
	for _, kws := range denialKeywords {
		if containsAny(text, kws) {
			return true
		}
	}
	return false
}

// SourceProbing reports whether the message probes for the bot's sources or
// authorship.
func SourceProbing(text string) bool { return containsAny(text, sourceProbeKeywords) }

// SupportRequest reports whether the message needs a live operator.
func SupportRequest(text string) bool { return containsAnyBounded(text, supportKeywords) }
