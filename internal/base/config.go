package base

import (
	"os"
	"reflect"

	"github.com/tidwall/gjson"
)

var Config struct {
	Addr       string `config:"addr"`
	DataDir    string `config:"data"`
	Cookie     string `config:"music.cookie"`
	NeteaseAPI string `config:"music.netease"`
	QQAPI      string `config:"music.qq"`
	Provider   string `config:"music.provider"`
}

// InitConfig fills Config from config.json (or the file named by
// APLAYER_CONFIG). Missing keys fall back to defaults.
func InitConfig() {
	path := os.Getenv("APLAYER_CONFIG")
	if path == "" {
		path = "config.json"
	}
	file, _ := os.ReadFile(path)
	g := gjson.Parse(string(file))

	var (
		v          = reflect.ValueOf(&Config).Elem()
		t          = v.Type()
		stringType = reflect.TypeOf("")
	)
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name := field.Tag.Get("config")
		if name == "" {
			continue
		}
		switch field.Type {
		case stringType:
			v.Field(i).SetString(g.Get(name).String())
		default:
			panic("unsupported type")
		}
	}

	if Config.Addr == "" {
		Config.Addr = ":8080"
	}
	if Config.DataDir == "" {
		Config.DataDir = "data"
	}
	if Config.Provider == "" {
		Config.Provider = "qq"
	}
}
