package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jobbuddy/internal/models"
	"github.com/jobbuddy/internal/service"
	"github.com/jobbuddy/internal/types"
)

// seedSummary reports what seed inserted
type seedSummary struct {
	Users         []string `json:"users"`
	Companies     int      `json:"companies"`
	Contacts      int      `json:"contacts"`
	Applications  int      `json:"applications"`
	Outreach      int      `json:"outreach"`
	Quests        int      `json:"quests"`
	CVAnalyses    int      `json:"cvAnalyses"`
	Notifications int      `json:"notifications"`
}

type seedCompany struct {
	name, website, location, industry, notes string
	contact                                  seedContact
	application                              *seedApplication
}

type seedContact struct {
	name, role, email, linkedin, notes string
}

type seedApplication struct {
	title, url, notes string
	status            types.ApplicationStatus
	appliedDaysAgo    int // negative leaves applied_date unset
	outreach          *seedOutreach
}

type seedOutreach struct {
	channel      types.OutreachChannel
	message      string
	followUpDays int
}

type seedUser struct {
	email, password, name string
	feeling               types.Feeling
	milestone             string
	companies             []seedCompany
	quests                []string
}

var demoUsers = []seedUser{
	{
		email:     "john.doe@example.com",
		password:  "Password123!",
		name:      "John Doe",
		feeling:   types.FeelingOverwhelmed,
		milestone: "Become a Senior Software Engineer at a FAANG company",
		companies: []seedCompany{
			{
				name: "Google", website: "https://google.com", location: "Mountain View, CA", industry: "Technology",
				notes:   "Interested in Cloud Platform team",
				contact: seedContact{"Sarah Johnson", "Senior Technical Recruiter", "sarah.j@google.com", "https://linkedin.com/in/sarahj", "Met at tech conference"},
				application: &seedApplication{
					title: "Software Engineer II", url: "https://careers.google.com/jobs/12345", notes: "Applied via referral",
					status: types.ApplicationApplied, appliedDaysAgo: 7,
					outreach: &seedOutreach{types.ChannelEmail, "Hi Sarah, I hope this message finds you well...", 7},
				},
			},
			{
				name: "Microsoft", website: "https://microsoft.com", location: "Redmond, WA", industry: "Technology",
				notes:   "Azure opportunities",
				contact: seedContact{"Michael Chen", "Engineering Manager", "michael.c@microsoft.com", "https://linkedin.com/in/michaelchen", "Referred by colleague"},
				application: &seedApplication{
					title: "Cloud Solutions Architect", url: "https://careers.microsoft.com/67890", notes: "Phone screen completed",
					status: types.ApplicationInterview, appliedDaysAgo: 14,
					outreach: &seedOutreach{types.ChannelLinkedIn, "Hello Michael, I came across your profile...", 0},
				},
			},
			{
				name: "Amazon", website: "https://amazon.com", location: "Seattle, WA", industry: "E-commerce",
				notes:   "AWS or Retail Tech",
				contact: seedContact{"Priya Patel", "HR Business Partner", "priya.p@amazon.com", "https://linkedin.com/in/priyapatel", "Found via LinkedIn"},
				application: &seedApplication{
					title: "Backend Developer", url: "https://amazon.jobs/54321", notes: "Preparing application materials",
					status: types.ApplicationPlanned, appliedDaysAgo: -1,
				},
			},
		},
		quests: []string{"first_application", "first_outreach"},
	},
	{
		email:     "jane.smith@example.com",
		password:  "SecurePass456!",
		name:      "Jane Smith",
		feeling:   types.FeelingExcited,
		milestone: "Launch my own tech startup in Africa",
		companies: []seedCompany{
			{
				name: "Andela", website: "https://andela.com", location: "Nairobi, Kenya", industry: "Technology",
				notes:   "Pan-African tech talent",
				contact: seedContact{"Kofi Mensah", "Talent Partner", "kofi@andela.com", "https://linkedin.com/in/kofimensah", "Alumni network"},
				application: &seedApplication{
					title: "Senior Software Engineer", url: "https://andela.com/careers/123", notes: "Negotiating offer",
					status: types.ApplicationOffer, appliedDaysAgo: 30,
				},
			},
			{
				name: "Flutterwave", website: "https://flutterwave.com", location: "Lagos, Nigeria", industry: "Fintech",
				notes:   "Payment solutions",
				contact: seedContact{"Amara Okafor", "Head of Engineering", "amara@flutterwave.com", "https://linkedin.com/in/amaraokafor", "Tech meetup connection"},
				application: &seedApplication{
					title: "Full Stack Engineer", url: "https://flutterwave.com/careers/456", notes: "Not selected after final round",
					status: types.ApplicationRejected, appliedDaysAgo: 20,
				},
			},
		},
		quests: []string{"first_application"},
	},
}

// seed inserts the demo data through the services so every invariant and side effect applies
func seed(ctx context.Context, svcs *service.Services) (*seedSummary, error) {
	summary := &seedSummary{}
	today := models.DateOf(time.Now())

	for _, su := range demoUsers {
		user, err := svcs.Users.Register(ctx, &service.RegisterInput{Email: su.email, Password: su.password, Name: su.name})
		if err != nil {
			return nil, fmt.Errorf("register %s: %w", su.email, err)
		}
		summary.Users = append(summary.Users, user.ID)

		if _, err := svcs.Onboarding.Create(ctx, &service.CreateOnboardingInput{
			UserID:         user.ID,
			CurrentFeeling: su.feeling,
			DreamMilestone: su.milestone,
		}); err != nil {
			return nil, fmt.Errorf("onboarding for %s: %w", su.email, err)
		}

		var firstApp string
		for _, sc := range su.companies {
			company, err := svcs.Companies.Create(ctx, &service.CreateCompanyInput{
				UserID:   user.ID,
				Name:     sc.name,
				Website:  strPtr(sc.website),
				Location: strPtr(sc.location),
				Industry: strPtr(sc.industry),
				Notes:    strPtr(sc.notes),
			})
			if err != nil {
				return nil, fmt.Errorf("company %s: %w", sc.name, err)
			}
			summary.Companies++

			contact, err := svcs.Contacts.Create(ctx, &service.CreateContactInput{
				CompanyID:   company.ID,
				Name:        sc.contact.name,
				Role:        strPtr(sc.contact.role),
				Email:       strPtr(sc.contact.email),
				LinkedInURL: strPtr(sc.contact.linkedin),
				Notes:       strPtr(sc.contact.notes),
			})
			if err != nil {
				return nil, fmt.Errorf("contact %s: %w", sc.contact.name, err)
			}
			summary.Contacts++

			sa := sc.application
			if sa == nil {
				continue
			}
			input := &service.CreateApplicationInput{
				UserID:    user.ID,
				CompanyID: company.ID,
				JobTitle:  sa.title,
				JobURL:    strPtr(sa.url),
				Status:    sa.status,
				Notes:     strPtr(sa.notes),
			}
			if sa.appliedDaysAgo >= 0 {
				applied := today.AddDate(0, 0, -sa.appliedDaysAgo)
				input.AppliedDate = &applied
			}
			result, err := svcs.Activity.LogApplication(ctx, input)
			if err != nil {
				return nil, fmt.Errorf("application %s: %w", sa.title, err)
			}
			summary.Applications++
			if result.Motivation != nil {
				summary.Notifications++
			}
			if firstApp == "" {
				firstApp = result.Application.ID
			}

			so := sa.outreach
			if so == nil {
				continue
			}
			appID := result.Application.ID
			out, err := svcs.Activity.LogOutreach(ctx, &service.CreateOutreachInput{
				UserID:          user.ID,
				ContactID:       contact.ID,
				ApplicationID:   &appID,
				Channel:         so.channel,
				MessageTemplate: so.message,
			}, service.LogOptions{FollowUpDays: so.followUpDays, Notify: so.followUpDays > 0})
			if err != nil {
				return nil, fmt.Errorf("outreach to %s: %w", sc.contact.name, err)
			}
			summary.Outreach++
			if out.Notification != nil {
				summary.Notifications++
			}
			if out.Motivation != nil {
				summary.Notifications++
			}
		}

		for _, quest := range su.quests {
			if _, err := svcs.Activity.CompleteQuest(ctx, user.ID, quest, 0); err != nil {
				return nil, fmt.Errorf("quest %s: %w", quest, err)
			}
			summary.Quests++
		}

		if firstApp != "" {
			if _, err := svcs.CVAnalyses.Create(ctx, &service.CreateCVAnalysisInput{
				UserID:          user.ID,
				ApplicationID:   &firstApp,
				CVFilename:      "resume.pdf",
				JobDescription:  "Looking for an engineer with Go, PostgreSQL and distributed systems experience.",
				ATSScore:        72,
				MatchedKeywords: []string{"Go", "PostgreSQL"},
				MissingKeywords: []string{"Kubernetes"},
				APIUsed:         "demo",
			}); err != nil {
				return nil, fmt.Errorf("cv analysis for %s: %w", su.email, err)
			}
			summary.CVAnalyses++
		}
	}
	return summary, nil
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
