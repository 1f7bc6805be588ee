package placeholder

import (
	"fmt"
	"strings"

	"blazehammer/internal/random"

	"github.com/brianvoe/gofakeit/v7"
)

// phrase books for the example providers, keyed by language then category
var phraseBooks = map[string]map[string][]string{
	"en": {
		"greetings": {"hi", "hello", "hey", "howdy", "g'day"},
		"farewells": {"bye", "goodbye", "see you", "take care", "later"},
		"positive":  {"yes", "sure", "absolutely", "of course", "definitely"},
		"negative":  {"no", "nope", "never", "not at all", "not really"},
		"names":     {"John", "Alice", "Bob", "Emily", "Charlie"},
		"places":    {"New York", "London", "Paris", "Dhaka", "Tokyo"},
	},
	"bn": {
		"greetings": {"হ্যালো", "নমস্কার", "হাই", "কেমন আছো", "শুভ সকাল"},
		"farewells": {"বিদায়", "বাই", "আলবিদা", "ফিরে দেখা হবে", "যত্নে থাকো"},
		"positive":  {"হ্যাঁ", "অবশ্যই", "পাকা", "নিশ্চিত", "কোনো সন্দেহ নেই"},
		"negative":  {"না", "কখনোই", "বিলকুল না", "এটা সম্ভব না", "ঠিক না"},
		"names":     {"রাহুল", "মিনা", "আলিফ", "রেহান", "মেহের"},
		"places":    {"ঢাকা", "চট্টগ্রাম", "রাজশাহী", "বরিশাল", "কুমিল্লা"},
	},
}

func pick(list []string) string {
	return gofakeit.RandomString(list)
}

// simpleExample returns a word of the requested category, greetings by default.
func simpleExample(kw Kwargs) (string, error) {
	book := phraseBooks["en"]

	if list, ok := book[kw.String("category", "")]; ok && len(list) > 0 {
		return pick(list), nil
	}

	return pick(book["greetings"]), nil
}

// advancedExample returns a category word, or a sentence whose shape depends on
// complexity (low, medium, high).
func advancedExample(kw Kwargs) (string, error) {
	book, ok := phraseBooks[kw.String("language", "en")]
	if !ok {
		book = phraseBooks["en"]
	}

	if category := kw.String("category", ""); category != "" {
		if list := book[category]; len(list) > 0 {
			return pick(list), nil
		}
	}

	length := max(kw.Int("length", 5), 0)
	if err := random.CheckLength(length); err != nil {
		return "", err
	}

	switch kw.String("complexity", "medium") {
	case "low":
		candidates := append(append([]string{}, book["greetings"]...), book["positive"]...)

		ws := make([]string, 0, length)
		for i := 0; i < length; i++ {
			ws = append(ws, pick(candidates))
		}

		return strings.Join(ws, " "), nil
	case "high":
		return fmt.Sprintf("%s! %s is thinking of leaving %s soon. %s? %s!",
			pick(book["greetings"]), pick(book["names"]), pick(book["places"]),
			pick(book["farewells"]), pick(book["positive"])), nil
	default:
		return fmt.Sprintf("%s is at %s.", pick(book["names"]), pick(book["places"])), nil
	}
}
