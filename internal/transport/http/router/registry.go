package router

import (
	"sort"

	"github.com/gin-gonic/gin"
)

// APIModule 功能模块把自己的路由挂到分组上
type APIModule interface{ MountAPI(*gin.RouterGroup) }

// 实现该接口可控制挂载顺序（数值越小越先挂），不实现默认 100
type prioritizer interface{ Priority() int }

// Registry 每个引擎一个实例，避免跨引擎/跨测试的全局状态
type Registry struct {
	mods []APIModule
}

func (r *Registry) Register(m APIModule) {
	r.mods = append(r.mods, m)
}

func (r *Registry) MountAll(api *gin.RouterGroup) {
	mods := append([]APIModule(nil), r.mods...)
	sort.SliceStable(mods, func(i, j int) bool {
		return priorityOf(mods[i]) < priorityOf(mods[j])
	})
	for _, m := range mods {
		m.MountAPI(api)
	}
}

func priorityOf(v any) int {
	if p, ok := v.(prioritizer); ok {
		return p.Priority()
	}
	return 100
}
