package model

// Portfolio 是站点展示的全部静态内容，启动时从配置加载一次。
type Portfolio struct {
	Profile  Profile         `mapstructure:"profile" json:"profile"`
	Projects []Project       `mapstructure:"projects" json:"projects"`
	Services []Service       `mapstructure:"services" json:"services"`
	Timeline []TimelineEntry `mapstructure:"timeline" json:"timeline"`
	Tasks    []Task          `mapstructure:"tasks" json:"tasks"`
	Skills   Skills          `mapstructure:"skills" json:"skills"`
}

// Profile 描述站点主人的基本信息，助手的预设回复也引用这些字段。
type Profile struct {
	Name        string      `mapstructure:"name" json:"name"`
	Title       string      `mapstructure:"title" json:"title"`
	Location    string      `mapstructure:"location" json:"location"`
	Email       string      `mapstructure:"email" json:"email"`
	Phone       string      `mapstructure:"phone" json:"phone"`
	Bio         string      `mapstructure:"bio" json:"bio"`
	Education   []Education `mapstructure:"education" json:"education"`
	Languages   []Language  `mapstructure:"languages" json:"languages"`
	SocialLinks SocialLinks `mapstructure:"social_links" json:"socialLinks"`
}

type Education struct {
	Degree string `mapstructure:"degree" json:"degree"`
	Field  string `mapstructure:"field" json:"field"`
	Year   string `mapstructure:"year" json:"year"`
}

type Language struct {
	Name  string `mapstructure:"name" json:"name"`
	Level string `mapstructure:"level" json:"level"`
}

type SocialLinks struct {
	GitHub   string `mapstructure:"github" json:"github"`
	LinkedIn string `mapstructure:"linkedin" json:"linkedin"`
	Twitter  string `mapstructure:"twitter" json:"twitter"`
}

// Project 是项目展示区中的一个条目。
type Project struct {
	ID           int      `mapstructure:"id" json:"id"`
	Title        string   `mapstructure:"title" json:"title"`
	Description  string   `mapstructure:"description" json:"description"`
	Image        string   `mapstructure:"image" json:"image"`
	Technologies []string `mapstructure:"technologies" json:"technologies"`
	Features     []string `mapstructure:"features" json:"features"`
	LiveLink     string   `mapstructure:"live_link" json:"liveLink"`
	GitHubLink   string   `mapstructure:"github_link" json:"githubLink"`
	Completed    bool     `mapstructure:"completed" json:"completed"`
}

type Service struct {
	ID          int      `mapstructure:"id" json:"id"`
	Title       string   `mapstructure:"title" json:"title"`
	Description string   `mapstructure:"description" json:"description"`
	Icon        string   `mapstructure:"icon" json:"icon"`
	Tools       []string `mapstructure:"tools" json:"tools"`
}

// TimelineEntry 的 Status 取值为 past、current 或 future。
type TimelineEntry struct {
	Year        string `mapstructure:"year" json:"year"`
	Title       string `mapstructure:"title" json:"title"`
	Description string `mapstructure:"description" json:"description"`
	Status      string `mapstructure:"status" json:"status"`
}

type Task struct {
	Title       string `mapstructure:"title" json:"title"`
	Description string `mapstructure:"description" json:"description"`
	Status      string `mapstructure:"status" json:"status"`
	Progress    int    `mapstructure:"progress" json:"progress"`
	Icon        string `mapstructure:"icon" json:"icon"`
}

// Skills 按类别分组列出技能。
type Skills struct {
	Frontend       FrontendSkills `mapstructure:"frontend" json:"frontend"`
	DeveloperTools DeveloperTools `mapstructure:"developer_tools" json:"developerTools"`
	Integration    Integration    `mapstructure:"integration" json:"integration"`
	Other          []string       `mapstructure:"other" json:"other"`
}

type FrontendSkills struct {
	Languages  []string `mapstructure:"languages" json:"languages"`
	Frameworks []string `mapstructure:"frameworks" json:"frameworks"`
	Styling    []string `mapstructure:"styling" json:"styling"`
}

type DeveloperTools struct {
	VersionControl []string `mapstructure:"version_control" json:"versionControl"`
	Editors        []string `mapstructure:"editors" json:"editors"`
	Debugging      []string `mapstructure:"debugging" json:"debugging"`
}

type Integration struct {
	API []string `mapstructure:"api" json:"api"`
}
