package entity

import "gorm.io/gorm"

// AutoMigrate 自动迁移所有MES表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// 账号
		&User{},

		// 基础数据
		&Personnel{},
		&Process{},

		// 物料
		&Material{},
		&MaterialReceipt{},

		// 生产
		&WorkOrder{},
		&WorkOrderProgress{},
		&WorkOrderException{},

		// 成品与质检
		&Product{},
		&ProductInventoryMove{},
		&InspectionRecord{},
	)
}
