package pagetype

import (
	"fmt"
	"strings"

	"github.com/gwd-cms/core/internal/pkg/response"
	"github.com/gwd-cms/core/internal/pkg/slug"
)

// Shared building blocks.

// SlideButton is a call-to-action button on a hero slide. Every slide
// carries between 1 and 3 of them.
type SlideButton struct {
	Label string `json:"label"`
	URL   string `json:"url"`
	Style string `json:"style"`
}

type HeroSlide struct {
	Title    string        `json:"title"`
	Subtitle string        `json:"subtitle"`
	ImageURL string        `json:"imageUrl"`
	Buttons  []SlideButton `json:"buttons"`
}

type GalleryImage struct {
	URL     string `json:"url"`
	Caption string `json:"caption"`
}

type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Home.

type HomeContent struct {
	HeroSection  HeroSection        `json:"heroSection"`
	WhyChoose    WhyChoose          `json:"whyChoose"`
	Counters     CounterSection     `json:"counters"`
	Testimonials TestimonialSection `json:"testimonials"`
	CTA          CallToAction       `json:"cta"`
}

type HeroSection struct {
	Heading    string      `json:"heading"`
	Subheading string      `json:"subheading"`
	Slides     []HeroSlide `json:"slides"`
}

type WhyChoose struct {
	Heading  string    `json:"heading"`
	Features []Feature `json:"features"`
}

type Feature struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type CounterSection struct {
	Counters []Counter `json:"counters"`
}

type Counter struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

type TestimonialSection struct {
	Items []Testimonial `json:"items"`
}

type Testimonial struct {
	Name     string `json:"name"`
	Quote    string `json:"quote"`
	PhotoURL string `json:"photoUrl"`
}

type CallToAction struct {
	Heading     string `json:"heading"`
	ButtonLabel string `json:"buttonLabel"`
	ButtonURL   string `json:"buttonUrl"`
}

func newHomeContent() HomeContent {
	return HomeContent{
		HeroSection:  HeroSection{Slides: []HeroSlide{}},
		WhyChoose:    WhyChoose{Features: []Feature{}},
		Counters:     CounterSection{Counters: []Counter{}},
		Testimonials: TestimonialSection{Items: []Testimonial{}},
	}
}

func newHeroSlide() HeroSlide {
	return HeroSlide{Buttons: []SlideButton{newSlideButton()}}
}

func newSlideButton() SlideButton {
	return SlideButton{Label: "Learn more", URL: "#", Style: "primary"}
}

func validateHome(content map[string]interface{}) []response.FieldError {
	var c HomeContent
	if err := decode(content, &c); err != nil {
		return []response.FieldError{{Path: "", Message: "content does not match the home page shape"}}
	}
	var errs []response.FieldError
	for i, s := range c.HeroSection.Slides {
		base := fmt.Sprintf("heroSection.slides[%d]", i)
		if strings.TrimSpace(s.Title) == "" {
			errs = append(errs, response.FieldError{Path: base + ".title", Message: "slide title is required"})
		}
		if len(s.Buttons) < minSlideButtons || len(s.Buttons) > maxSlideButtons {
			errs = append(errs, response.FieldError{
				Path:    base + ".buttons",
				Message: fmt.Sprintf("a slide must have between %d and %d buttons", minSlideButtons, maxSlideButtons),
			})
		}
		for j, b := range s.Buttons {
			if strings.TrimSpace(b.Label) == "" {
				errs = append(errs, response.FieldError{Path: fmt.Sprintf("%s.buttons[%d].label", base, j), Message: "button label is required"})
			}
			if strings.TrimSpace(b.URL) == "" {
				errs = append(errs, response.FieldError{Path: fmt.Sprintf("%s.buttons[%d].url", base, j), Message: "button url is required"})
			}
		}
	}
	for i, f := range c.WhyChoose.Features {
		if strings.TrimSpace(f.Title) == "" {
			errs = append(errs, response.FieldError{Path: fmt.Sprintf("whyChoose.features[%d].title", i), Message: "feature title is required"})
		}
	}
	for i, n := range c.Counters.Counters {
		if strings.TrimSpace(n.Label) == "" {
			errs = append(errs, response.FieldError{Path: fmt.Sprintf("counters.counters[%d].label", i), Message: "counter label is required"})
		}
		if n.Value < 0 {
			errs = append(errs, response.FieldError{Path: fmt.Sprintf("counters.counters[%d].value", i), Message: "counter value must not be negative"})
		}
	}
	for i, t := range c.Testimonials.Items {
		base := fmt.Sprintf("testimonials.items[%d]", i)
		if strings.TrimSpace(t.Name) == "" {
			errs = append(errs, response.FieldError{Path: base + ".name", Message: "testimonial name is required"})
		}
		if strings.TrimSpace(t.Quote) == "" {
			errs = append(errs, response.FieldError{Path: base + ".quote", Message: "testimonial quote is required"})
		}
	}
	return errs
}

const (
	minSlideButtons = 1
	maxSlideButtons = 3
)

var homeSpec = Spec{
	Type:     Home,
	New:      func() map[string]interface{} { return toMap(newHomeContent()) },
	Validate: validateHome,
	Lists: []ListSpec{
		{Path: "heroSection.slides", Item: func() interface{} { return newHeroSlide() }},
		{Path: "heroSection.slides[].buttons", Min: minSlideButtons, Max: maxSlideButtons, Item: func() interface{} { return newSlideButton() }},
		{Path: "whyChoose.features", Item: func() interface{} { return Feature{} }},
		{Path: "counters.counters", Item: func() interface{} { return Counter{} }},
		{Path: "testimonials.items", Item: func() interface{} { return Testimonial{} }},
	},
}

// About us.

type AboutContent struct {
	Intro      IntroSection `json:"intro"`
	Mission    string       `json:"mission"`
	Vision     string       `json:"vision"`
	Team       []TeamMember `json:"team"`
	Milestones []Milestone  `json:"milestones"`
}

type IntroSection struct {
	Heading string `json:"heading"`
	Body    string `json:"body"`
}

type TeamMember struct {
	Name     string `json:"name"`
	Role     string `json:"role"`
	PhotoURL string `json:"photoUrl"`
	Bio      string `json:"bio"`
}

type Milestone struct {
	Year        int    `json:"year"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

func newAboutContent() AboutContent {
	return AboutContent{Team: []TeamMember{}, Milestones: []Milestone{}}
}

func validateAbout(content map[string]interface{}) []response.FieldError {
	var c AboutContent
	if err := decode(content, &c); err != nil {
		return []response.FieldError{{Path: "", Message: "content does not match the about-us page shape"}}
	}
	var errs []response.FieldError
	for i, m := range c.Team {
		if strings.TrimSpace(m.Name) == "" {
			errs = append(errs, response.FieldError{Path: fmt.Sprintf("team[%d].name", i), Message: "team member name is required"})
		}
	}
	for i, m := range c.Milestones {
		if strings.TrimSpace(m.Title) == "" {
			errs = append(errs, response.FieldError{Path: fmt.Sprintf("milestones[%d].title", i), Message: "milestone title is required"})
		}
	}
	return errs
}

var aboutSpec = Spec{
	Type:     AboutUs,
	New:      func() map[string]interface{} { return toMap(newAboutContent()) },
	Validate: validateAbout,
	Lists: []ListSpec{
		{Path: "team", Item: func() interface{} { return TeamMember{} }},
		{Path: "milestones", Item: func() interface{} { return Milestone{} }},
	},
}

// Admissions.

type AdmissionsContent struct {
	Intro     IntroSection    `json:"intro"`
	Steps     []AdmissionStep `json:"steps"`
	Documents []DocumentItem  `json:"documents"`
	FAQs      []FAQ           `json:"faqs"`
}

type AdmissionStep struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type DocumentItem struct {
	Name     string `json:"name"`
	Required bool   `json:"required"`
}

func newAdmissionsContent() AdmissionsContent {
	return AdmissionsContent{Steps: []AdmissionStep{}, Documents: []DocumentItem{}, FAQs: []FAQ{}}
}

func validateAdmissions(content map[string]interface{}) []response.FieldError {
	var c AdmissionsContent
	if err := decode(content, &c); err != nil {
		return []response.FieldError{{Path: "", Message: "content does not match the admissions page shape"}}
	}
	var errs []response.FieldError
	for i, s := range c.Steps {
		if strings.TrimSpace(s.Title) == "" {
			errs = append(errs, response.FieldError{Path: fmt.Sprintf("steps[%d].title", i), Message: "step title is required"})
		}
	}
	for i, d := range c.Documents {
		if strings.TrimSpace(d.Name) == "" {
			errs = append(errs, response.FieldError{Path: fmt.Sprintf("documents[%d].name", i), Message: "document name is required"})
		}
	}
	errs = append(errs, validateFAQs("faqs", c.FAQs)...)
	return errs
}

func validateFAQs(base string, faqs []FAQ) []response.FieldError {
	var errs []response.FieldError
	for i, f := range faqs {
		if strings.TrimSpace(f.Question) == "" {
			errs = append(errs, response.FieldError{Path: fmt.Sprintf("%s[%d].question", base, i), Message: "question is required"})
		}
		if strings.TrimSpace(f.Answer) == "" {
			errs = append(errs, response.FieldError{Path: fmt.Sprintf("%s[%d].answer", base, i), Message: "answer is required"})
		}
	}
	return errs
}

var admissionsSpec = Spec{
	Type:     Admissions,
	New:      func() map[string]interface{} { return toMap(newAdmissionsContent()) },
	Validate: validateAdmissions,
	Lists: []ListSpec{
		{Path: "steps", Item: func() interface{} { return AdmissionStep{} }},
		{Path: "documents", Item: func() interface{} { return DocumentItem{} }},
		{Path: "faqs", Item: func() interface{} { return FAQ{} }},
	},
}

// Contact.

type ContactContent struct {
	Heading     string       `json:"heading"`
	Address     string       `json:"address"`
	Phone       string       `json:"phone"`
	Email       string       `json:"email"`
	MapEmbedURL string       `json:"mapEmbedUrl"`
	OfficeHours []OfficeHour `json:"officeHours"`
}

type OfficeHour struct {
	Days  string `json:"days"`
	Hours string `json:"hours"`
}

func newContactContent() ContactContent {
	return ContactContent{OfficeHours: []OfficeHour{}}
}

func validateContact(content map[string]interface{}) []response.FieldError {
	var c ContactContent
	if err := decode(content, &c); err != nil {
		return []response.FieldError{{Path: "", Message: "content does not match the contact page shape"}}
	}
	var errs []response.FieldError
	if c.Email != "" && !strings.Contains(c.Email, "@") {
		errs = append(errs, response.FieldError{Path: "email", Message: "email address is malformed"})
	}
	for i, h := range c.OfficeHours {
		if strings.TrimSpace(h.Days) == "" {
			errs = append(errs, response.FieldError{Path: fmt.Sprintf("officeHours[%d].days", i), Message: "days are required"})
		}
	}
	return errs
}

var contactSpec = Spec{
	Type:     Contact,
	New:      func() map[string]interface{} { return toMap(newContactContent()) },
	Validate: validateContact,
	Lists: []ListSpec{
		{Path: "officeHours", Item: func() interface{} { return OfficeHour{} }},
	},
}

// Programs overview.

type ProgramsContent struct {
	Heading string        `json:"heading"`
	Intro   string        `json:"intro"`
	Cards   []ProgramCard `json:"cards"`
}

type ProgramCard struct {
	Title    string `json:"title"`
	Summary  string `json:"summary"`
	ImageURL string `json:"imageUrl"`
	Slug     string `json:"slug"`
}

func newProgramsContent() ProgramsContent {
	return ProgramsContent{Cards: []ProgramCard{}}
}

func validatePrograms(content map[string]interface{}) []response.FieldError {
	var c ProgramsContent
	if err := decode(content, &c); err != nil {
		return []response.FieldError{{Path: "", Message: "content does not match the programs page shape"}}
	}
	var errs []response.FieldError
	for i, card := range c.Cards {
		base := fmt.Sprintf("cards[%d]", i)
		if strings.TrimSpace(card.Title) == "" {
			errs = append(errs, response.FieldError{Path: base + ".title", Message: "card title is required"})
		}
		if card.Slug != "" && !slug.Valid(card.Slug) {
			errs = append(errs, response.FieldError{Path: base + ".slug", Message: "slug must contain only lowercase letters, digits and hyphens"})
		}
	}
	return errs
}

var programsSpec = Spec{
	Type:     Programs,
	New:      func() map[string]interface{} { return toMap(newProgramsContent()) },
	Validate: validatePrograms,
	Lists: []ListSpec{
		{Path: "cards", Item: func() interface{} { return ProgramCard{} }},
	},
}

// Program detail.

type ProgramDetailContent struct {
	Name       string         `json:"name"`
	AgeRange   string         `json:"ageRange"`
	Summary    string         `json:"summary"`
	Body       string         `json:"body"`
	Gallery    []GalleryImage `json:"gallery"`
	Highlights []Highlight    `json:"highlights"`
}

type Highlight struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func newProgramDetailContent() ProgramDetailContent {
	return ProgramDetailContent{Gallery: []GalleryImage{}, Highlights: []Highlight{}}
}

func validateProgramDetail(content map[string]interface{}) []response.FieldError {
	var c ProgramDetailContent
	if err := decode(content, &c); err != nil {
		return []response.FieldError{{Path: "", Message: "content does not match the program-detail page shape"}}
	}
	var errs []response.FieldError
	errs = append(errs, validateGallery("gallery", c.Gallery)...)
	for i, h := range c.Highlights {
		if strings.TrimSpace(h.Title) == "" {
			errs = append(errs, response.FieldError{Path: fmt.Sprintf("highlights[%d].title", i), Message: "highlight title is required"})
		}
	}
	return errs
}

func validateGallery(base string, images []GalleryImage) []response.FieldError {
	var errs []response.FieldError
	for i, img := range images {
		if strings.TrimSpace(img.URL) == "" {
			errs = append(errs, response.FieldError{Path: fmt.Sprintf("%s[%d].url", base, i), Message: "image url is required"})
		}
	}
	return errs
}

var programDetailSpec = Spec{
	Type:     ProgramDetail,
	New:      func() map[string]interface{} { return toMap(newProgramDetailContent()) },
	Validate: validateProgramDetail,
	Lists: []ListSpec{
		{Path: "gallery", Item: func() interface{} { return GalleryImage{} }},
		{Path: "highlights", Item: func() interface{} { return Highlight{} }},
	},
}

// Centres overview.

type CentresContent struct {
	Heading string       `json:"heading"`
	Intro   string       `json:"intro"`
	Cards   []CentreCard `json:"cards"`
}

type CentreCard struct {
	Name     string `json:"name"`
	City     string `json:"city"`
	ImageURL string `json:"imageUrl"`
	Slug     string `json:"slug"`
}

func newCentresContent() CentresContent {
	return CentresContent{Cards: []CentreCard{}}
}

func validateCentres(content map[string]interface{}) []response.FieldError {
	var c CentresContent
	if err := decode(content, &c); err != nil {
		return []response.FieldError{{Path: "", Message: "content does not match the centres page shape"}}
	}
	var errs []response.FieldError
	for i, card := range c.Cards {
		base := fmt.Sprintf("cards[%d]", i)
		if strings.TrimSpace(card.Name) == "" {
			errs = append(errs, response.FieldError{Path: base + ".name", Message: "centre name is required"})
		}
		if card.Slug != "" && !slug.Valid(card.Slug) {
			errs = append(errs, response.FieldError{Path: base + ".slug", Message: "slug must contain only lowercase letters, digits and hyphens"})
		}
	}
	return errs
}

var centresSpec = Spec{
	Type:     Centres,
	New:      func() map[string]interface{} { return toMap(newCentresContent()) },
	Validate: validateCentres,
	Lists: []ListSpec{
		{Path: "cards", Item: func() interface{} { return CentreCard{} }},
	},
}

// Centre detail.

type CentreDetailContent struct {
	Name       string         `json:"name"`
	Address    string         `json:"address"`
	Phone      string         `json:"phone"`
	Email      string         `json:"email"`
	Body       string         `json:"body"`
	Gallery    []GalleryImage `json:"gallery"`
	Facilities []Facility     `json:"facilities"`
}

type Facility struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

func newCentreDetailContent() CentreDetailContent {
	return CentreDetailContent{Gallery: []GalleryImage{}, Facilities: []Facility{}}
}

func validateCentreDetail(content map[string]interface{}) []response.FieldError {
	var c CentreDetailContent
	if err := decode(content, &c); err != nil {
		return []response.FieldError{{Path: "", Message: "content does not match the centre-detail page shape"}}
	}
	var errs []response.FieldError
	if c.Email != "" && !strings.Contains(c.Email, "@") {
		errs = append(errs, response.FieldError{Path: "email", Message: "email address is malformed"})
	}
	errs = append(errs, validateGallery("gallery", c.Gallery)...)
	for i, f := range c.Facilities {
		if strings.TrimSpace(f.Name) == "" {
			errs = append(errs, response.FieldError{Path: fmt.Sprintf("facilities[%d].name", i), Message: "facility name is required"})
		}
	}
	return errs
}

var centreDetailSpec = Spec{
	Type:     CentreDetail,
	New:      func() map[string]interface{} { return toMap(newCentreDetailContent()) },
	Validate: validateCentreDetail,
	Lists: []ListSpec{
		{Path: "gallery", Item: func() interface{} { return GalleryImage{} }},
		{Path: "facilities", Item: func() interface{} { return Facility{} }},
	},
}

// Enquiry.

type EnquiryContent struct {
	Heading       string           `json:"heading"`
	Body          string           `json:"body"`
	FormRecipient string           `json:"formRecipient"`
	Subjects      []EnquirySubject `json:"subjects"`
}

type EnquirySubject struct {
	Label string `json:"label"`
}

func newEnquiryContent() EnquiryContent {
	return EnquiryContent{Subjects: []EnquirySubject{}}
}

func validateEnquiry(content map[string]interface{}) []response.FieldError {
	var c EnquiryContent
	if err := decode(content, &c); err != nil {
		return []response.FieldError{{Path: "", Message: "content does not match the enquiry page shape"}}
	}
	var errs []response.FieldError
	if c.FormRecipient != "" && !strings.Contains(c.FormRecipient, "@") {
		errs = append(errs, response.FieldError{Path: "formRecipient", Message: "recipient email is malformed"})
	}
	for i, s := range c.Subjects {
		if strings.TrimSpace(s.Label) == "" {
			errs = append(errs, response.FieldError{Path: fmt.Sprintf("subjects[%d].label", i), Message: "subject label is required"})
		}
	}
	return errs
}

var enquirySpec = Spec{
	Type:     Enquiry,
	New:      func() map[string]interface{} { return toMap(newEnquiryContent()) },
	Validate: validateEnquiry,
	Lists: []ListSpec{
		{Path: "subjects", Item: func() interface{} { return EnquirySubject{} }},
	},
}

// Generic.

type GenericContent struct {
	Heading  string           `json:"heading"`
	Body     string           `json:"body"`
	Sections []GenericSection `json:"sections"`
}

type GenericSection struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func newGenericContent() GenericContent {
	return GenericContent{Sections: []GenericSection{}}
}

func validateGeneric(content map[string]interface{}) []response.FieldError {
	var c GenericContent
	if err := decode(content, &c); err != nil {
		return []response.FieldError{{Path: "", Message: "content does not match the generic page shape"}}
	}
	var errs []response.FieldError
	for i, s := range c.Sections {
		if strings.TrimSpace(s.Title) == "" {
			errs = append(errs, response.FieldError{Path: fmt.Sprintf("sections[%d].title", i), Message: "section title is required"})
		}
	}
	return errs
}

var genericSpec = Spec{
	Type:     Generic,
	New:      func() map[string]interface{} { return toMap(newGenericContent()) },
	Validate: validateGeneric,
	Lists: []ListSpec{
		{Path: "sections", Item: func() interface{} { return GenericSection{} }},
	},
}
