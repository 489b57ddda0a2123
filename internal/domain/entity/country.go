package entity

type Country struct {
	Code              string `json:"code"`
	Name              string `json:"name"`
	Description       string `json:"description"`
	StudyDescription  string `json:"study_description,omitempty"`
	TravelDescription string `json:"travel_description,omitempty"`
	VisaDescription   string `json:"visa_description,omitempty"`
	Popular           bool   `json:"popular"`
}

// Countries is the static room catalog. Every country gets a study, travel
// and visa room.
var Countries = []Country{
	{
		Code:              "us",
		Name:              "United States",
		Description:       "World-class universities and diverse travel destinations",
		StudyDescription:  "Home to Ivy League schools and top research universities",
		TravelDescription: "From national parks to iconic cities",
		VisaDescription:   "F-1, J-1, B-2 and immigrant visa guidance",
		Popular:           true,
	},
	{
		Code:              "uk",
		Name:              "United Kingdom",
		Description:       "Historic universities and rich cultural heritage",
		StudyDescription:  "Oxford, Cambridge and a one-year masters tradition",
		TravelDescription: "Castles, countryside and city breaks",
		VisaDescription:   "Student, Skilled Worker and visitor visa routes",
		Popular:           true,
	},
	{
		Code:              "ca",
		Name:              "Canada",
		Description:       "Welcoming immigration policies and quality education",
		StudyDescription:  "Co-op programs and post-graduation work permits",
		TravelDescription: "Mountains, lakes and multicultural cities",
		VisaDescription:   "Study permits, Express Entry and visitor visas",
		Popular:           true,
	},
	{
		Code:              "au",
		Name:              "Australia",
		Description:       "High quality of life and strong universities",
		StudyDescription:  "Group of Eight universities and graduate visas",
		TravelDescription: "Beaches, outback and working holidays",
		VisaDescription:   "Subclass 500 student and skilled migration visas",
		Popular:           true,
	},
	{
		Code:              "de",
		Name:              "Germany",
		Description:       "Tuition-free public universities in Europe's largest economy",
		StudyDescription:  "English-taught masters with little to no tuition",
		TravelDescription: "Historic towns and efficient rail travel",
		VisaDescription:   "Student visas, job seeker visas and the EU Blue Card",
		Popular:           true,
	},
	{
		Code:              "fr",
		Name:              "France",
		Description:       "Art, cuisine and affordable higher education",
		StudyDescription:  "Grandes ecoles and public universities",
		TravelDescription: "From Paris to Provence",
		VisaDescription:   "Long-stay student visas and Schengen visits",
		Popular:           false,
	},
	{
		Code:              "nl",
		Name:              "Netherlands",
		Description:       "English-friendly study programs and cycling culture",
		StudyDescription:  "Hundreds of English-taught degrees",
		TravelDescription: "Canals, tulips and compact cities",
		VisaDescription:   "Study residence permits and orientation year",
		Popular:           false,
	},
	{
		Code:              "jp",
		Name:              "Japan",
		Description:       "Cutting-edge technology and deep tradition",
		StudyDescription:  "MEXT scholarships and English-taught programs",
		TravelDescription: "Temples, bullet trains and seasonal festivals",
		VisaDescription:   "Student visas and the new digital nomad visa",
		Popular:           false,
	},
	{
		Code:              "sg",
		Name:              "Singapore",
		Description:       "Asia's education and business hub",
		StudyDescription:  "NUS and NTU rank among the world's best",
		TravelDescription: "A city-state of gardens and food courts",
		VisaDescription:   "Student passes and employment passes",
		Popular:           false,
	},
	{
		Code:              "nz",
		Name:              "New Zealand",
		Description:       "Stunning landscapes and relaxed lifestyle",
		StudyDescription:  "Practical degrees with post-study work rights",
		TravelDescription: "Adventure sports and Middle-earth scenery",
		VisaDescription:   "Fee-paying student visas and working holidays",
		Popular:           false,
	},
	{
		Code:              "ie",
		Name:              "Ireland",
		Description:       "Friendly English-speaking gateway to Europe",
		StudyDescription:  "One-year masters and a two-year stay-back option",
		TravelDescription: "Cliffs, pubs and green countryside",
		VisaDescription:   "Study visas and critical skills permits",
		Popular:           false,
	},
	{
		Code:              "ae",
		Name:              "United Arab Emirates",
		Description:       "Fast-growing hub for work and study in the Gulf",
		StudyDescription:  "International branch campuses in Dubai and Abu Dhabi",
		TravelDescription: "Desert safaris and record-breaking skylines",
		VisaDescription:   "Golden visas, work permits and visit visas",
		Popular:           false,
	},
}

// FindCountry looks up a catalog entry by its code.
func FindCountry(code string) (*Country, bool) {
	for i := range Countries {
		if Countries[i].Code == code {
			return &Countries[i], true
		}
	}
	return nil, false
}
