package prompt

import (
	"fmt"
	"sort"
	"strings"
)

const (
	PlatformBilibili    = "bilibili"
	PlatformXiaohongshu = "xiaohongshu"
)

// DefaultPlatform returns the platform used when the form leaves it empty.
func DefaultPlatform() string {
	return PlatformBilibili
}

// Platform holds the prompt templates for one target site.
type Platform struct {
	Name   string
	Title  string
	System string
	User   string
}

var platformRegistry = map[string]Platform{
	PlatformBilibili: {
		Name:   PlatformBilibili,
		Title:  "B站视频标题+文案+标签",
		System: bilibiliSystemTemplate,
		User:   "帮我生成一篇B站视频的标题+文案，主题是：{topic}",
	},
	PlatformXiaohongshu: {
		Name:   PlatformXiaohongshu,
		Title:  "小红书文案",
		System: xiaohongshuSystemTemplate,
		User:   "帮我写一篇关于「{topic}」的小红书文案",
	},
}

// Template returns the registered platform.
func Template(name string) (Platform, error) {
	p, ok := platformRegistry[name]
	if !ok {
		return Platform{}, fmt.Errorf("unknown platform: %s", name)
	}
	return p, nil
}

// Platforms returns a sorted list of supported platform names.
func Platforms() []string {
	names := make([]string, 0, len(platformRegistry))
	for name := range platformRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasPlatform reports whether platform is registered.
func HasPlatform(name string) bool {
	_, ok := platformRegistry[name]
	return ok
}

// fill substitutes placeholders in a single pass, so a topic containing
// "{style}" is left as typed.
func fill(template string, style Style, topic string) string {
	return strings.NewReplacer("{style}", string(style), "{topic}", topic).Replace(template)
}

const bilibiliSystemTemplate = `你是B站资深UP主，擅长生成符合B站用户喜好的内容：
1. 标题要吸睛，带B站热门梗/数字/反问，比如“千万别再踩坑了！”“3分钟搞定！”
2. 文案口语化，像和观众聊天，多用“宝子们”“家人们”“敲黑板”等B站常用语
3. 结构清晰：开头钩子+核心内容+结尾互动（求三连/评论）
4. 附带5个以上B站热门标签（带#），符合主题
5. 整体风格：{style}，语言活泼有网感，避免太官方`

const xiaohongshuSystemTemplate = `你是小红书文案助手，需要写出活泼、有网感、带emoji的小红书文案：
1. 标题要抓眼球，可以用数字、感叹和emoji
2. 结构清晰：开头钩子+正文干货+结尾互动（引导点赞/收藏/评论）
3. 正文分段，多用emoji点缀，像和闺蜜聊天
4. 附带5个以上小红书热门标签（带#），符合主题
5. 整体风格：{style}，真实自然，避免广告腔`
