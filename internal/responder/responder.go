// Package responder 实现助手挂件背后的预设回复逻辑。
//
// 回复完全由启动时构建的静态规则表决定：按声明顺序检查触发词，
// 然后依次尝试问候、致谢、告别三类正则，最后返回通用回复。
package responder

import (
	"fmt"
	"regexp"
	"strings"

	"portfolio-go/internal/model"

	"github.com/samber/lo"
)

// 非规则匹配时使用的回复类别。
const (
	KeyGreeting = "greeting"
	KeyThanks   = "thanks"
	KeyFarewell = "farewell"
	KeyFallback = "fallback"
)

var (
	greetingPattern = regexp.MustCompile(`(?i)^(hi|hello|hey|howdy|greetings)`)
	thanksPattern   = regexp.MustCompile(`(?i)thank(s| you)`)
	farewellPattern = regexp.MustCompile(`(?i)bye|goodbye|see you|farewell`)
)

// TriggerRule 将一组小写触发子串映射到一条预设回复。
type TriggerRule struct {
	Key      string
	Triggers []string
	Response string
}

// Reply 是一次匹配的结果，Key 为命中的规则或回复类别。
type Reply struct {
	Key  string
	Text string
}

// Responder 在构建后不可变，可以被多个 goroutine 并发使用。
type Responder struct {
	rules    []TriggerRule
	greeting string
	thanks   string
	farewell string
	fallback string
	welcome  string
}

// New 根据站点主人的资料构建规则表。规则的声明顺序决定匹配优先级。
func New(profile model.Profile) *Responder {
	name := profile.Name
	rules := []TriggerRule{
		{
			Key:      "skills",
			Triggers: []string{"skills", "technologies", "tech stack", "what can you do", "what do you know"},
			Response: fmt.Sprintf("%s is proficient in the following technologies:\n\n"+
				"- Frontend: React.js, Next.js, TypeScript, Tailwind CSS\n"+
				"- Backend: Node.js, Express\n"+
				"- Database: PostgreSQL, MongoDB\n"+
				"- Other: Git, CI/CD, REST APIs, GraphQL", name),
		},
		{
			Key:      "experience",
			Triggers: []string{"experience", "work history", "background", "portfolio"},
			Response: fmt.Sprintf("%s has over 3 years of experience in web development. Some notable experience includes:\n\n"+
				"1. Building responsive web applications with React\n"+
				"2. Developing REST APIs with Node.js and Express\n"+
				"3. Working with databases like PostgreSQL and MongoDB\n"+
				"4. Implementing modern UI designs with Tailwind CSS and animations", name),
		},
		{
			Key:      "education",
			Triggers: []string{"education", "university", "degree", "college", "school"},
			Response: fmt.Sprintf("%s is currently pursuing a degree in Computer Science, and is also self-taught in many areas "+
				"of web development, constantly learning through online courses, documentation, and building projects.", name),
		},
		{
			Key:      "contact",
			Triggers: []string{"contact", "email", "phone", "reach", "hire", "connect"},
			Response: fmt.Sprintf("You can contact %s through:\n\n"+
				"- Email: %s\n"+
				"- LinkedIn: %s\n"+
				"- GitHub: %s\n\n"+
				"%s is currently available for freelance work and project collaborations.",
				name, profile.Email, profile.SocialLinks.LinkedIn, profile.SocialLinks.GitHub, name),
		},
		{
			Key:      "projects",
			Triggers: []string{"projects", "portfolio", "work", "examples"},
			Response: fmt.Sprintf("%s has worked on several projects, including:\n\n"+
				"1. An e-commerce platform with React, Node.js, and MongoDB\n"+
				"2. A real-time chat application using WebSockets\n"+
				"3. A task management system with authentication and permission controls\n"+
				"4. Multiple landing pages and business websites for clients\n\n"+
				"Check out the Projects section on this website for more details and live demos.", name),
		},
	}

	return &Responder{
		rules:    rules,
		greeting: fmt.Sprintf("Hello! How can I help you learn more about %s or the work behind this site?", name),
		thanks:   "You're welcome! Is there anything else you'd like to know about my skills, projects, or experience?",
		farewell: "Goodbye! Feel free to reach out again if you have any more questions. Have a great day!",
		fallback: fmt.Sprintf("That's an interesting question about %s. %s specializes in frontend development with React, "+
			"TypeScript, and modern CSS frameworks. Would you like to know more about skills, projects, or experience?", name, name),
		welcome: fmt.Sprintf("Hi there! I'm %s's virtual assistant. I can answer questions about %s's skills, experience, "+
			"and projects. How can I help you today?", name, name),
	}
}

// Match 返回第一个命中的回复。触发词按子串包含判断，不做分词或词边界处理。
func (r *Responder) Match(utterance string) Reply {
	input := strings.ToLower(utterance)

	rule, found := lo.Find(r.rules, func(rule TriggerRule) bool {
		return lo.ContainsBy(rule.Triggers, func(trigger string) bool {
			return strings.Contains(input, trigger)
		})
	})
	if found {
		return Reply{Key: rule.Key, Text: rule.Response}
	}

	switch {
	case greetingPattern.MatchString(input):
		return Reply{Key: KeyGreeting, Text: r.greeting}
	case thanksPattern.MatchString(input):
		return Reply{Key: KeyThanks, Text: r.thanks}
	case farewellPattern.MatchString(input):
		return Reply{Key: KeyFarewell, Text: r.farewell}
	}
	return Reply{Key: KeyFallback, Text: r.fallback}
}

// Respond 将一句用户输入映射为一条回复，总是返回非空字符串。
func (r *Responder) Respond(utterance string) string {
	return r.Match(utterance).Text
}

// Welcome 返回会话开始时展示的欢迎语。
func (r *Responder) Welcome() string {
	return r.welcome
}

// Rules 返回规则表的副本。
func (r *Responder) Rules() []TriggerRule {
	return lo.Map(r.rules, func(rule TriggerRule, _ int) TriggerRule {
		rule.Triggers = append([]string(nil), rule.Triggers...)
		return rule
	})
}
