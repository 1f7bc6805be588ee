package placeholder

import (
	"fmt"
	"strings"

	"blazehammer/internal/random"

	"github.com/brianvoe/gofakeit/v7"
)

func static(fn func() string) Generator {
	return func(Kwargs) (string, error) {
		return fn(), nil
	}
}

func words(kw Kwargs) (string, error) {
	n := kw.Int("nb_words", 6)
	if n <= 0 {
		return "", fmt.Errorf("nb_words must be positive, got %d", n)
	}
	if err := random.CheckLength(n); err != nil {
		return "", err
	}

	ws := make([]string, n)
	for i := range ws {
		ws[i] = gofakeit.Word()
	}

	sentence := strings.Join(ws, " ")

	return strings.ToUpper(sentence[:1]) + sentence[1:] + ".", nil
}

func dateOfBirth(kw Kwargs) (string, error) {
	return gofakeit.Date().Format(kw.String("format", "2006-01-02")), nil
}

// DefaultRegistry returns a registry with the built-in faker-style generators, their
// dotted provider aliases, the profile fields and the example custom providers.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	plain := map[string]Generator{
		"name":           static(gofakeit.Name),
		"first_name":     static(gofakeit.FirstName),
		"last_name":      static(gofakeit.LastName),
		"email":          static(gofakeit.Email),
		"phone_number":   static(gofakeit.Phone),
		"user_name":      static(gofakeit.Username),
		"url":            static(gofakeit.URL),
		"company":        static(gofakeit.Company),
		"job":            static(gofakeit.JobTitle),
		"city":           static(gofakeit.City),
		"country":        static(gofakeit.Country),
		"state":          static(gofakeit.State),
		"street_address": static(gofakeit.Street),
		"postcode":       static(gofakeit.Zip),
		"address":        static(func() string { return gofakeit.Address().Address }),
		"ipv4":           static(gofakeit.IPv4Address),
		"uuid4":          static(gofakeit.UUID),
		"color_name":     static(gofakeit.Color),
		"ssn":            static(gofakeit.SSN),
		"word":           static(gofakeit.Word),
		"sentence":       words,
		"date_of_birth":  dateOfBirth,
	}

	for name, gen := range plain {
		r.Register(name, gen)
	}

	aliases := map[string]string{
		"person.name":                 "name",
		"person.first_name":           "first_name",
		"person.last_name":            "last_name",
		"internet.email":              "email",
		"internet.user_name":          "user_name",
		"internet.url":                "url",
		"internet.ipv4":               "ipv4",
		"phone_number.phone_number":   "phone_number",
		"company.company":             "company",
		"job.job":                     "job",
		"address.city":                "city",
		"address.country":             "country",
		"address.street_address":      "street_address",
		"address.postcode":            "postcode",
		"lorem.word":                  "word",
		"lorem.sentence":              "sentence",
		"misc.uuid4":                  "uuid4",
		"color.color_name":            "color_name",
		"ssn.ssn":                     "ssn",
		"date_time.date_of_birth":     "date_of_birth",
		"simple_example.simple":       "simple_example",
		"advanced_example.advanced":   "advanced_example",
	}

	r.Register("simple_example", simpleExample)
	r.Register("advanced_example", advancedExample)

	for alias, target := range aliases {
		gen, _ := r.Lookup(target)
		r.Register(alias, gen)
	}

	profile := map[string]Generator{
		"job":         static(gofakeit.JobTitle),
		"company":     static(gofakeit.Company),
		"ssn":         static(gofakeit.SSN),
		"residence":   static(func() string { return gofakeit.Address().Address }),
		"address":     static(func() string { return gofakeit.Address().Address }),
		"blood_group": static(func() string { return gofakeit.RandomString(bloodGroups) }),
		"website":     static(gofakeit.URL),
		"username":    static(gofakeit.Username),
		"name":        static(gofakeit.Name),
		"sex":         static(func() string { return strings.ToUpper(gofakeit.Gender()[:1]) }),
		"mail":        static(gofakeit.Email),
		"birthdate":   dateOfBirth,
	}

	for field, gen := range profile {
		r.RegisterProfileField(field, gen)
	}

	return r
}

var bloodGroups = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}
