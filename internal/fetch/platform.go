package fetch

import (
	"net/url"
	"strings"
)

// Platform represents a known job board platform.
type Platform string

// Known job boards
const (
	PlatformGreenhouse Platform = "greenhouse"
	PlatformLever      Platform = "lever"
	PlatformWorkday    Platform = "workday"
	PlatformUnknown    Platform = "unknown"
)

type platformRule struct {
	platform Platform
	hosts    []string
	content  []string
	noise    []string
}

var platformRules = []platformRule{
	{
		platform: PlatformGreenhouse,
		hosts:    []string{"greenhouse.io"},
		content:  []string{".job__description.body", ".job__description", ".job-description__content", "#content", ".job-post-container"},
		noise:    []string{".application--wrapper", ".voluntary-self-id", ".voluntary-self-id-wrapper", "#usa_self_id_section", ".post-apply"},
	},
	{
		platform: PlatformLever,
		hosts:    []string{"lever.co"},
		content:  []string{".posting-page", ".section-wrapper.page-full-width", ".posting-description", ".content"},
		noise:    []string{".apply-section", ".lever-application-form", ".posting-apply"},
	},
	{
		platform: PlatformWorkday,
		hosts:    []string{"workday.com", "myworkdayjobs.com"},
		content:  []string{"[data-automation-id='jobDescription']", ".gwt-HTML", ".job-description"},
		noise:    []string{"[data-automation-id='applyButton']", ".application-section"},
	},
}

// commonNoise is removed on every board: application forms, EEO sections, share widgets and
// consent banners.
var commonNoise = []string{
	"form",
	"#application-form",
	".application-form",
	".apply-button-container",
	"[data-testid='application-form']",
	".voluntary-disclosure",
	".eeo-statement",
	".eeo-section",
	".self-identification",
	".social-share",
	".share-buttons",
	".cookie-consent",
	".gdpr-notice",
}

// DetectPlatform identifies the job board platform from a URL.
func DetectPlatform(urlStr string) Platform {
	if rule := ruleFor(urlStr); rule != nil {
		return rule.platform
	}
	return PlatformUnknown
}

// PlatformContentSelectors returns content selectors for a platform.
func PlatformContentSelectors(platform Platform) []string {
	for _, rule := range platformRules {
		if rule.platform == platform {
			return rule.content
		}
	}
	return JobPostingSelectors()
}

// PlatformNoiseSelectors returns the noise selectors for a platform, common ones included.
func PlatformNoiseSelectors(platform Platform) []string {
	out := append([]string(nil), commonNoise...)
	for _, rule := range platformRules {
		if rule.platform == platform {
			out = append(out, rule.noise...)
		}
	}
	return out
}

func ruleFor(urlStr string) *platformRule {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil
	}
	host := strings.ToLower(parsed.Hostname())
	for i, rule := range platformRules {
		for _, h := range rule.hosts {
			if host == h || strings.HasSuffix(host, "."+h) {
				return &platformRules[i]
			}
		}
	}
	return nil
}
