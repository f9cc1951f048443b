package readiness

// Tables holds every lookup the assessor needs. Weights, GapImpact and
// Effort must cover all dimensions, and every dimension needs at least one
// question. Insights may be partial; missing entries use a generic
// "Assessment needed" insight.
type Tables struct {
	Questions []Question
	Weights   map[Dimension]float64
	GapImpact map[Dimension]int
	Effort    map[Dimension]int
	Insights  map[Dimension]map[Maturity]Insight
}

// DefaultTables returns the built-in questionnaire and scoring tables.
func DefaultTables() Tables {
	return Tables{
		Questions: defaultQuestions(),
		Weights: map[Dimension]float64{
			StrategicAlignment:      1.0,
			LeadershipCommitment:    1.0,
			DataMaturity:            0.9,
			TechnicalInfrastructure: 0.8,
			TalentCapabilities:      0.9,
			OrganizationalCulture:   0.8,
			ChangeManagement:        0.7,
			GovernanceEthics:        0.6,
		},
		GapImpact: map[Dimension]int{
			StrategicAlignment:      5,
			LeadershipCommitment:    5,
			DataMaturity:            4,
			TalentCapabilities:      4,
			TechnicalInfrastructure: 3,
			OrganizationalCulture:   3,
			ChangeManagement:        2,
			GovernanceEthics:        2,
		},
		Effort: map[Dimension]int{
			StrategicAlignment:      2,
			LeadershipCommitment:    2,
			GovernanceEthics:        2,
			ChangeManagement:        3,
			OrganizationalCulture:   4,
			DataMaturity:            4,
			TechnicalInfrastructure: 4,
			TalentCapabilities:      5,
		},
		Insights: defaultInsights(),
	}
}

func defaultQuestions() []Question {
	return []Question{
		{
			Key:       string(StrategicAlignment),
			Dimension: StrategicAlignment,
			Text:      "How well are AI initiatives aligned with business strategy?",
			Weight:    0.15,
			ScoringGuide: map[int]string{
				1: "No clear connection between AI and business strategy",
				2: "Some AI projects exist but limited strategic alignment",
				3: "AI initiatives generally support business objectives",
				4: "AI is integral to achieving strategic goals",
				5: "AI drives competitive advantage and strategic differentiation",
			},
		},
		{
			Key:       string(LeadershipCommitment),
			Dimension: LeadershipCommitment,
			Text:      "What level of commitment do senior leaders show for AI transformation?",
			Weight:    0.15,
			ScoringGuide: map[int]string{
				1: "Limited awareness or interest from leadership",
				2: "Some leadership interest but inconsistent support",
				3: "Moderate leadership support with allocated resources",
				4: "Strong leadership commitment with clear accountability",
				5: "Leadership champions AI transformation organization-wide",
			},
		},
		{
			Key:       string(DataMaturity),
			Dimension: DataMaturity,
			Text:      "How mature are your data management and governance capabilities?",
			Weight:    0.15,
			ScoringGuide: map[int]string{
				1: "Data is siloed with poor quality and governance",
				2: "Basic data management with some quality issues",
				3: "Structured data governance with moderate quality",
				4: "Advanced data management with high quality standards",
				5: "Best-in-class data platform enabling AI at scale",
			},
		},
		{
			Key:       string(TechnicalInfrastructure),
			Dimension: TechnicalInfrastructure,
			Text:      "How ready is your technical infrastructure for AI workloads?",
			Weight:    0.12,
			ScoringGuide: map[int]string{
				1: "Legacy systems with no AI-ready infrastructure",
				2: "Some modern systems but limited AI capabilities",
				3: "Adequate infrastructure with some AI tools",
				4: "Modern infrastructure well-suited for AI deployment",
				5: "Cloud-native, scalable AI-optimized infrastructure",
			},
		},
		{
			Key:       string(TalentCapabilities),
			Dimension: TalentCapabilities,
			Text:      "What is the current state of AI talent and skills in your organization?",
			Weight:    0.13,
			ScoringGuide: map[int]string{
				1: "No dedicated AI talent or skills",
				2: "Limited AI skills scattered across teams",
				3: "Some AI expertise with basic capabilities",
				4: "Strong AI team with proven track record",
				5: "World-class AI talent driving innovation",
			},
		},
		{
			Key:       string(OrganizationalCulture),
			Dimension: OrganizationalCulture,
			Text:      "How supportive is your organizational culture toward AI adoption?",
			Weight:    0.12,
			ScoringGuide: map[int]string{
				1: "Resistance to change and new technologies",
				2: "Cautious approach with some cultural barriers",
				3: "Generally open to AI with moderate enthusiasm",
				4: "Embraces AI with strong innovation culture",
				5: "AI-first mindset embedded in organizational DNA",
			},
		},
		{
			Key:       string(ChangeManagement),
			Dimension: ChangeManagement,
			Text:      "How effective are your change management capabilities?",
			Weight:    0.10,
			ScoringGuide: map[int]string{
				1: "No formal change management processes",
				2: "Basic change management with limited success",
				3: "Structured change management with moderate results",
				4: "Advanced change management with high success rates",
				5: "Exceptional change management enabling rapid transformation",
			},
		},
		{
			Key:       string(GovernanceEthics),
			Dimension: GovernanceEthics,
			Text:      "How mature are your AI governance and ethics frameworks?",
			Weight:    0.08,
			ScoringGuide: map[int]string{
				1: "No AI governance or ethics considerations",
				2: "Basic awareness but no formal frameworks",
				3: "Initial governance structures with some policies",
				4: "Comprehensive governance with clear ethics guidelines",
				5: "Leading-edge responsible AI governance and ethics",
			},
		},
	}
}

func insight(strengths, gaps, recs []string) Insight {
	return Insight{Strengths: strengths, Gaps: gaps, Recommendations: recs}
}

func defaultInsights() map[Dimension]map[Maturity]Insight {
	return map[Dimension]map[Maturity]Insight{
		StrategicAlignment: {
			Nascent: insight(nil,
				[]string{"No clear AI strategy", "Disconnected from business goals"},
				[]string{"Develop AI vision statement", "Align AI initiatives with business strategy"}),
			Emerging: insight([]string{"Some strategic awareness"},
				[]string{"Inconsistent strategic alignment"},
				[]string{"Create AI strategy document", "Establish governance board"}),
			Developing: insight([]string{"Basic strategic framework"},
				[]string{"Limited strategic integration"},
				[]string{"Enhance strategy integration", "Develop success metrics"}),
			Advanced: insight([]string{"Strong strategic alignment"},
				[]string{"Opportunity for deeper integration"},
				[]string{"Optimize strategic outcomes", "Expand competitive advantage"}),
			Optimizing: insight([]string{"Exemplary strategic integration", "AI drives competitive advantage"},
				nil,
				[]string{"Share best practices", "Lead industry transformation"}),
		},
		LeadershipCommitment: {
			Nascent: insight(nil,
				[]string{"No executive sponsor for AI", "AI absent from leadership agenda"},
				[]string{"Appoint an executive AI sponsor", "Run an AI briefing for the leadership team"}),
			Emerging: insight([]string{"Some leadership interest"},
				[]string{"Support varies between leaders"},
				[]string{"Secure a dedicated AI budget", "Set leadership-level AI objectives"}),
			Developing: insight([]string{"Leadership allocates resources to AI"},
				[]string{"Accountability for AI outcomes is unclear"},
				[]string{"Assign owners for AI outcomes", "Review AI progress at executive meetings"}),
			Advanced: insight([]string{"Strong leadership accountability"},
				[]string{"Commitment concentrated in a few leaders"},
				[]string{"Extend sponsorship across business units", "Develop AI leadership training"}),
			Optimizing: insight([]string{"Leadership champions AI organization-wide"},
				nil,
				[]string{"Mentor peer organizations", "Sustain AI as a board-level priority"}),
		},
		DataMaturity: {
			Nascent: insight(nil,
				[]string{"Data siloed across systems", "Poor data quality"},
				[]string{"Inventory critical data assets", "Establish data ownership"}),
			Emerging: insight([]string{"Basic data management in place"},
				[]string{"Recurring data quality issues"},
				[]string{"Implement data quality framework", "Define data governance policies"}),
			Developing: insight([]string{"Structured data governance"},
				[]string{"Data not yet ready for AI at scale"},
				[]string{"Build shared data platform", "Automate data quality monitoring"}),
			Advanced: insight([]string{"High quality data standards"},
				[]string{"Limited real-time data access"},
				[]string{"Enable real-time data pipelines", "Expand feature store adoption"}),
			Optimizing: insight([]string{"Best-in-class data platform"},
				nil,
				[]string{"Monetize data products", "Publish data standards externally"}),
		},
		TechnicalInfrastructure: {
			Nascent: insight(nil,
				[]string{"Legacy infrastructure", "No AI tooling"},
				[]string{"Assess cloud readiness", "Pilot a managed AI platform"}),
			Emerging: insight([]string{"Some modern systems"},
				[]string{"Limited compute for AI workloads"},
				[]string{"Provision scalable compute", "Standardize development environments"}),
			Developing: insight([]string{"Adequate infrastructure with AI tools"},
				[]string{"Manual model deployment"},
				[]string{"Adopt MLOps practices", "Automate model deployment"}),
			Advanced: insight([]string{"Modern AI-ready infrastructure"},
				[]string{"Cost of AI workloads not optimized"},
				[]string{"Optimize infrastructure costs", "Harden model monitoring"}),
			Optimizing: insight([]string{"Cloud-native AI-optimized platform"},
				nil,
				[]string{"Evaluate emerging AI hardware", "Offer platform as an internal service"}),
		},
		TalentCapabilities: {
			Nascent: insight(nil,
				[]string{"No dedicated AI talent", "No AI training path"},
				[]string{"Hire core AI roles", "Launch AI literacy program"}),
			Emerging: insight([]string{"Pockets of AI skills"},
				[]string{"Skills scattered across teams"},
				[]string{"Form a central AI team", "Create AI career paths"}),
			Developing: insight([]string{"Basic AI expertise"},
				[]string{"Limited senior AI expertise"},
				[]string{"Recruit senior AI practitioners", "Expand hands-on training"}),
			Advanced: insight([]string{"Strong AI team with track record"},
				[]string{"Retention risk for key talent"},
				[]string{"Strengthen retention programs", "Partner with universities"}),
			Optimizing: insight([]string{"World-class AI talent"},
				nil,
				[]string{"Contribute to research community", "Grow talent through internal academies"}),
		},
		OrganizationalCulture: {
			Nascent: insight(nil,
				[]string{"Resistance to new technology", "Fear of job displacement"},
				[]string{"Communicate AI vision to all staff", "Address workforce concerns openly"}),
			Emerging: insight([]string{"Cautious openness to AI"},
				[]string{"Cultural barriers to experimentation"},
				[]string{"Celebrate early AI wins", "Encourage safe experimentation"}),
			Developing: insight([]string{"Generally open to AI"},
				[]string{"Innovation limited to a few teams"},
				[]string{"Run innovation challenges", "Share AI success stories"}),
			Advanced: insight([]string{"Strong innovation culture"},
				[]string{"Uneven adoption across functions"},
				[]string{"Embed AI in everyday workflows", "Recognize AI champions"}),
			Optimizing: insight([]string{"AI-first mindset"},
				nil,
				[]string{"Export culture practices to partners", "Keep experimentation budgets open"}),
		},
		ChangeManagement: {
			Nascent: insight(nil,
				[]string{"No formal change process"},
				[]string{"Adopt a change management framework", "Identify change agents"}),
			Emerging: insight([]string{"Basic change practices"},
				[]string{"Limited change success"},
				[]string{"Train change agents", "Plan stakeholder communications"}),
			Developing: insight([]string{"Structured change management"},
				[]string{"Adoption measured inconsistently"},
				[]string{"Track adoption metrics", "Build feedback loops into rollouts"}),
			Advanced: insight([]string{"High change success rates"},
				[]string{"Change capacity limits pace"},
				[]string{"Scale change network", "Reuse change playbooks"}),
			Optimizing: insight([]string{"Rapid transformation capability"},
				nil,
				[]string{"Institutionalize continuous change", "Coach other programs"}),
		},
		GovernanceEthics: {
			Nascent: insight(nil,
				[]string{"No AI governance", "Ethics risks unmanaged"},
				[]string{"Draft responsible AI principles", "Create AI risk register"}),
			Emerging: insight([]string{"Awareness of AI ethics"},
				[]string{"No formal governance framework"},
				[]string{"Establish AI ethics committee", "Define model approval process"}),
			Developing: insight([]string{"Initial governance structures"},
				[]string{"Policies not consistently enforced"},
				[]string{"Audit models against policy", "Document model lineage"}),
			Advanced: insight([]string{"Comprehensive governance"},
				[]string{"Limited external assurance"},
				[]string{"Commission external AI audits", "Automate compliance checks"}),
			Optimizing: insight([]string{"Leading responsible AI practice"},
				nil,
				[]string{"Publish transparency reports", "Shape industry standards"}),
		},
	}
}
