package result

type (
	// Version model used for reporting server version
	// info.
	Version struct {
		UserAgent string `json:"useragent"`
		// DBVersion is the version of the store layout.
		DBVersion string   `json:"dbversion"`
		Protocol  Protocol `json:"protocol"`
		RPC       RPC      `json:"rpc"`
	}

	// RPC represents the RPC server configuration.
	RPC struct {
		MaxWebSocketClients int `json:"maxwebsocketclients"`
		MaxRequestBodyBytes int `json:"maxrequestbodybytes"`
	}

	// Protocol represents registry-wide parameters.
	Protocol struct {
		Schemes             []string `json:"schemes"`
		AddressFormat       string   `json:"addressformat"`
		AddressPrefix       string   `json:"addressprefix,omitempty"`
		AddressVersion      byte     `json:"addressversion"`
		PersistFailedProofs bool     `json:"persistfailedproofs"`
	}
)
