package models

// ChatMessage 对话记录条目
type ChatMessage struct {
	Role     string `json:"role"` // user / assistant
	Content  string `json:"content"`
	UserName string `json:"user_name"`
}

// CustomRole 自定义角色
type CustomRole struct {
	ID                     int    `json:"id"`
	RoleName               string `json:"role_name"`
	Persona                string `json:"persona"`
	Personality            string `json:"personality"`
	Scenario               string `json:"scenario"`
	ExamplesOfDialogue     string `json:"examples_of_dialogue"`
	CustomRoleTemplateType string `json:"custom_role_template_type"`
	RolePackageID          int    `json:"role_package_id"`
	CreatedAt              string `json:"created_at,omitempty"`
	UpdatedAt              string `json:"updated_at,omitempty"`
}

// VoiceInfo TTS音色信息
type VoiceInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
