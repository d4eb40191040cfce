package config

// Default returns the built-in configuration: iOS and Android targets of a
// Cordova project, sources under assets/, ImageMagick backend.
func Default() Config {
	return Config{
		ConfigXML: "config.xml",
		AssetPath: "assets/",
		Sources: Sources{
			AppIcon:      Source{Path: "assets/appicon.png"},
			Splashscreen: Source{Path: "assets/splashscreen.png"},
		},
		Platforms: []string{"ios", "android"},
		Backend: Backend{
			Engine:  EngineImageMagick,
			Quality: DefaultQuality,
			Gravity: "center",
		},
		Specs: map[string]PlatformSpec{
			"ios":     iosSpec(),
			"android": androidSpec(),
		},
	}
}

func iosSpec() PlatformSpec {
	return PlatformSpec{
		Key:                   "ios",
		Name:                  "iOS",
		Path:                  "platforms/ios",
		DestinationPath:       "platforms/ios/$name$/Resources/",
		GenerateIcons:         true,
		GenerateSplashscreens: true,
		GeneratePreviews:      true,
		Icons: []Icon{
			// non-retina
			{40, "icons/icon-40.png"},
			{50, "icons/icon-50.png"},
			{60, "icons/icon-60.png"},
			{72, "icons/icon-72.png"},
			{76, "icons/icon-76.png"},
			{29, "icons/icon-small.png"},
			{57, "icons/icon.png"},

			// retina
			{58, "icons/icon-small@2x.png"},
			{80, "icons/icon-40@2x.png"},
			{100, "icons/icon-50@2x.png"},
			{120, "icons/icon-60@2x.png"},
			{180, "icons/icon-60@3x.png"},
			{144, "icons/icon-72@2x.png"},
			{152, "icons/icon-76@2x.png"},
			{114, "icons/icon@2x.png"},
		},
		// The store rejects alpha channels, hence jpg.
		AppstoreIcon: &Icon{1024, "appstore-icon.jpg"},
		Splashscreens: []Splash{
			// portrait
			{640, 1136, "splash/Default-568h@2x~iphone.png"},
			{750, 1334, "splash/Default-667h.png"},
			{1242, 2208, "splash/Default-736h.png"},
			{1536, 2208, "splash/Default-Portrait@2x~ipad.png"},
			{768, 2048, "splash/Default-Portrait~ipad.png"},
			{640, 960, "splash/Default@2x~iphone.png"},
			{320, 480, "splash/Default~iphone.png"},

			// landscape
			{2208, 1242, "splash/Default-Landscape-736h.png"},
			{2048, 1536, "splash/Default-Landscape@2x~ipad.png"},
			{1024, 768, "splash/Default-Landscape~ipad.png"},
		},
		Previews: []Preview{
			{640, 920, "3-5inch", "$file$-port.jpg"},
			{640, 960, "3-5inch", "$file$-port-full.jpg"},
			{960, 600, "3-5inch", "$file$-land.jpg"},
			{960, 640, "3-5inch", "$file$-land-full.jpg"},

			{640, 1096, "4inch", "$file$-port.jpg"},
			{640, 1136, "4inch", "$file$-port-full.jpg"},
			{1136, 600, "4inch", "$file$-land.jpg"},
			{1136, 640, "4inch", "$file$-land-full.jpg"},

			{750, 1334, "4-7inch", "$file$-port.jpg"},
			{1334, 750, "4-7inch", "$file$-land.jpg"},

			{1242, 2208, "5-5inch", "$file$-port.jpg"},
			{2208, 1242, "5-5inch", "$file$-land.jpg"},

			{768, 1004, "ipad", "$file$-port.jpg"},
			{768, 1024, "ipad", "$file$-port-full.jpg"},
			{1024, 748, "ipad", "$file$-land.jpg"},
			{1024, 768, "ipad", "$file$-land-full.jpg"},

			{1536, 2008, "ipad-retina", "$file$-port.jpg"},
			{1536, 2048, "ipad-retina", "$file$-port-full.jpg"},
			{2048, 1496, "ipad-retina", "$file$-land.jpg"},
			{2048, 1536, "ipad-retina", "$file$-land-full.jpg"},
		},
	}
}

func androidSpec() PlatformSpec {
	return PlatformSpec{
		Key:                   "android",
		Name:                  "Android",
		Path:                  "platforms/android/",
		DestinationPath:       "platforms/android/res/",
		GenerateIcons:         true,
		GenerateSplashscreens: true,
		GeneratePreviews:      true,
		// ldpi is derived by Android itself.
		Icons: []Icon{
			{96, "drawable/icon.png"},
			{48, "drawable-mdpi/icon.png"},
			{72, "drawable-hdpi/icon.png"},
			{96, "drawable-xhdpi/icon.png"},
			{144, "drawable-xxhdpi/icon.png"},
			{192, "drawable-xxxhdpi/icon.png"},
		},
		Splashscreens: []Splash{
			// landscape
			{320, 200, "drawable-land-ldpi/screen.png"},
			{480, 320, "drawable-land-mdpi/screen.png"},
			{800, 480, "drawable-land-hdpi/screen.png"},
			{1280, 720, "drawable-land-xhdpi/screen.png"},

			// portrait
			{200, 320, "drawable-port-ldpi/screen.png"},
			{320, 480, "drawable-port-mdpi/screen.png"},
			{480, 800, "drawable-port-hdpi/screen.png"},
			{720, 1280, "drawable-port-xhdpi/screen.png"},
		},
	}
}
