package settings

type UpdateSettingPayload struct {
	Value string `json:"value" validate:"max=4096"`
}
