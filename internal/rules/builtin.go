package rules

// APIKeys carries the pre-configured upstream keys embedded into templates.
type APIKeys struct {
	Flickr      string
	Mobypicture string
}

const plixiTemplate = "http://api.plixi.com/api/tpapi.svc/imagefromurl?size=big&url={0}"

// Builtin returns the supported service table in match order. Earlier entries
// win, so more specific patterns for a host must come first.
func Builtin(keys APIKeys) []Definition {
	return []Definition{
		{
			Name:     "携帯百景",
			Pattern:  `https?://(?:www.)?movapic.com/pic/([0-9]+[0-9a-f]+)`,
			Kind:     SingleReplace,
			Template: "http://image.movapic.com/pic/m_{0}.jpeg",
		},
		{
			Name:       "携帯百景",
			Pattern:    `https?://(?:www.)?movapic.com/([a-zA-Z0-9]+)/pic/([0-9]+)`,
			Kind:       ResponseDOM,
			ExtractDOM: SelectAttr("div.picdetail img.image", "src"),
		},
		{
			Name:     "TwitPic",
			Pattern:  `https?://(?:www.)?twitpic.com/(?!photos)([0-9a-z]+)`,
			Kind:     SingleReplace,
			Template: "http://twitpic.com/show/large/{0}.jpg",
		},
		{
			Name:     "twitgoo",
			Pattern:  `https?://(?:www.)?twitgoo.com/([0-9a-z]+)`,
			Kind:     SingleReplace,
			Template: "http://twitgoo.com/show/img/{0}",
		},
		{
			Name:     "TweetPhoto",
			Pattern:  `(https?://(?:www.)?tweetphoto.com/[0-9]+)`,
			Kind:     SingleReplace,
			Template: plixiTemplate,
		},
		{
			Name:     "Plixi",
			Pattern:  `(https?://plixi.com/p/[0-9]+)`,
			Kind:     SingleReplace,
			Template: plixiTemplate,
		},
		{
			Name:     "Lockerz",
			Pattern:  `(https?://lockerz.com/s/[0-9]+)`,
			Kind:     SingleReplace,
			Template: plixiTemplate,
		},
		{
			Name:     "Mobypicture",
			Pattern:  `(https?://(?:www.)?moby.to/[a-zA-Z0-9]+)`,
			Kind:     SingleReplace,
			Template: "http://api.mobypicture.com?t={0}&s=medium&format=plain&k=" + keys.Mobypicture,
		},
		{
			Name:     "Big Canvas PhotoShare",
			Pattern:  `https?://(?:www.)?bcphotoshare.com/photos/[0-9]+/([0-9]+)`,
			Kind:     SingleReplace,
			Template: "http://images.bcphotoshare.com/storages/{0}/large.jpg",
		},
		{
			Name:     "img.ly",
			Pattern:  `https?://(?:www.)?img.ly/([a-zA-Z0-9]+)`,
			Kind:     SingleReplace,
			Template: "http://img.ly/show/large/{0}",
		},
		{
			Name:            "yfrog",
			Pattern:         `https?://(?:www.)?yfrog.com/([a-zA-Z0-9]+)`,
			Kind:            ResponseRegex,
			Template:        "http://yfrog.com/api/xmlInfo?path={0}",
			ResponsePattern: `<image_link>([^<]+)`,
		},
		{
			Name:            "ImageShack",
			Pattern:         `(https?://(?:imageshack.us/photos?/[^/]+/[0-9]+/[^/]+/|img[0-9]*.imageshack.us/i/[^/]+/))`,
			Kind:            ResponseRegex,
			Template:        "{0}",
			ResponsePattern: `<meta\s*property="og:image"\s*content="([^"]+)`,
		},
		{
			Name:     "TwitrPix",
			Pattern:  `https?://twitrpix.com/([a-zA-Z0-9]+)`,
			Kind:     SingleReplace,
			Template: "http://img.twitrpix.com/{0}",
		},
		{
			Name:     "Pckles",
			Pattern:  `https?://(?:pckles.com|pckl.es)/([A-Za-z0-9_]+)/([a-z0-9]+)`,
			Kind:     DoubleReplace,
			Template: "http://pckles.com/{0}/{1}.jpg",
		},
		{
			Name:        "Instagram",
			Pattern:     `(https?://instagr.am/p/[^/]+/?)`,
			Kind:        ResponseJSON,
			Template:    "http://api.instagram.com/oembed?url={0}",
			ExtractJSON: ExtractInstagram,
		},
		{
			Name:       "はてなフォトライフ",
			Pattern:    `https?://f.hatena.ne.jp/[^/]+/[0-9]+`,
			Kind:       ResponseDOM,
			ExtractDOM: SelectAttr("img.foto", "src"),
		},
		{
			Name:       "Skitch",
			Pattern:    `https?://(?:skitch.com|skit.ch)/.+`,
			Kind:       ResponseDOM,
			ExtractDOM: SelectAttr("#skitch-image", "src"),
		},
		{
			Name:     "ow.ly",
			Pattern:  `https?://ow.ly/i/([0-9a-zA-Z]+)`,
			Kind:     SingleReplace,
			Template: "http://static.ow.ly/photos/normal/{0}.jpg",
		},
		{
			Name:     "ついっぷるフォト",
			Pattern:  `https?://p.twipple.jp/([0-9a-zA-Z]{5})`,
			Kind:     SingleReplace,
			Template: "http://p.twipple.jp/show/large/{0}",
		},
		{
			Name:            "ニコニコ動画",
			Pattern:         `http://www.nicovideo.jp/watch/sm([0-9]+)`,
			Kind:            ResponseRegex,
			Template:        "http://ext.nicovideo.jp/api/getthumbinfo/sm{0}",
			ResponsePattern: `<thumbnail_url>([^<]+)`,
		},
		{
			Name:     "YouTube",
			Pattern:  `https?://(?:youtu.be/|(?:www.youtube.com/(?:v/|embed/|watch\?(?:.*?)v=)))([a-zA-Z0-9]+)`,
			Kind:     SingleReplace,
			Template: "http://img.youtube.com/vi/{0}/0.jpg",
		},
		{
			Name:        "picplz",
			Pattern:     `https?://picplz.com/(?!user)([a-zA-Z0-9]+)/?$`,
			Kind:        ResponseJSON,
			Template:    "http://api.picplz.com/api/v2/pic.json?shorturl_id={0}",
			ExtractJSON: ExtractPicplz,
		},
		{
			Name:        "picplz",
			Pattern:     `https?://picplz.com/user/[^/]+/pic/([a-zA-Z0-9]+)`,
			Kind:        ResponseJSON,
			Template:    "http://api.picplz.com/api/v2/pic.json?longurl_id={0}",
			ExtractJSON: ExtractPicplz,
		},
		{
			Name:    "Flickr",
			Pattern: `https?://(?:www.|m.)?flickr.com/(?:#/)?photos/[^/]+/([0-9]+)`,
			Kind:    ResponseJSON,
			Template: "http://api.flickr.com/services/rest/?photo_id={0}" +
				"&method=flickr.photos.getSizes&format=json&nojsoncallback=1&api_key=" + keys.Flickr,
			ExtractJSON: ExtractFlickr,
		},
	}
}
