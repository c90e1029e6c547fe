package crafty

// LoginResponse represents the response returned by the Crafty API upon successful authentication.
type LoginResponse struct {
	Status string `json:"status"`
	Data   struct {
		Token  string `json:"token"`   // Bearer token used for authenticated requests
		UserID string `json:"user_id"` // ID of the authenticated user
	} `json:"data"`
}

// LoginPayload represents the payload used to authenticate with the Crafty API.
type LoginPayload struct {
	Username string `json:"username"` // Username for authentication
	Password string `json:"password"` // Password for authentication
}

// Server represents a Minecraft server instance managed by the Crafty panel.
type Server struct {
	ServerID string `json:"server_id"`   // Unique ID of the server
	Name     string `json:"server_name"` // Display name in the panel
	Port     int    `json:"server_port"` // Port the server is listening on
}

// ServerList represents the response structure containing a list of servers from the Crafty API.
type ServerList struct {
	Status string   `json:"status"`
	Data   []Server `json:"data"` // List of servers
}

// ActionResponse is returned by the server action endpoints.
type ActionResponse struct {
	Status string `json:"status"` // "ok" on success
	Error  string `json:"error,omitempty"`
}
