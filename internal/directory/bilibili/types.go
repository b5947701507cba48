package bilibili

// Structs mirroring the JSON envelopes of the web-interface endpoints.
// Only the fields we read are declared; everything else is ignored.

type searchResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Result []searchVideoItem `json:"result"`
	} `json:"data"`
}

type searchVideoItem struct {
	Type    string `json:"type"`
	BVID    string `json:"bvid"`
	Title   string `json:"title"`
	Author  string `json:"author"`
	MID     int64  `json:"mid"`
	PubDate int64  `json:"pubdate"` // unix seconds
	Pic     string `json:"pic"`
	Play    int64  `json:"play"`
}

type userSearchResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Result []userSearchItem `json:"result"`
	} `json:"data"`
}

type userSearchItem struct {
	MID   int64  `json:"mid"`
	Uname string `json:"uname"`
	Upic  string `json:"upic"`
	Fans  int64  `json:"fans"`
}

type spaceArcResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		List struct {
			Vlist []spaceArcItem `json:"vlist"`
		} `json:"list"`
	} `json:"data"`
}

type spaceArcItem struct {
	BVID    string `json:"bvid"`
	Title   string `json:"title"`
	Author  string `json:"author"`
	MID     int64  `json:"mid"`
	Created int64  `json:"created"` // unix seconds
	Pic     string `json:"pic"`
	Play    int64  `json:"play"`
}

type viewResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		BVID    string `json:"bvid"`
		Title   string `json:"title"`
		Pic     string `json:"pic"`
		PubDate int64  `json:"pubdate"`
		Owner   struct {
			MID  int64  `json:"mid"`
			Name string `json:"name"`
		} `json:"owner"`
		Stat struct {
			View int64 `json:"view"`
		} `json:"stat"`
	} `json:"data"`
}
