package viewer

// Default returns the reference configuration: a single DICOM-web source
// pointing at a DCM4CHEE archive, study list enabled and the
// investigational-use dialog switched off.
func Default() Config {
	return Config{
		RouterBasename: "/",
		Extensions:     []string{},
		Modes:          []string{},
		ShowStudyList:  true,
		DataSources: []DataSource{
			{
				Namespace:  "@ohif/extension-default.dataSourcesModule.dicomweb",
				SourceName: "dicomweb",
				Configuration: DataSourceConfiguration{
					FriendlyName:             "DCM4CHEE DICOM Web",
					Name:                     "DCM4CHEE",
					WadoURIRoot:              "http://10.0.0.10:8080/dcm4chee-arc/aets/DCM4CHEE/wado",
					QidoRoot:                 "http://10.0.0.10:8080/dcm4chee-arc/aets/DCM4CHEE/rs",
					WadoRoot:                 "http://10.0.0.10:8080/dcm4chee-arc/aets/DCM4CHEE/rs",
					QidoSupportsIncludeField: true,
					ImageRendering:           ImageWadoRS,
					ThumbnailRendering:       ThumbnailWadoRS,
					EnableStudyLazyLoad:      true,
					SupportsFuzzyMatching:    true,
					SupportsReject:           true,
					RequestOptions: RequestOptions{
						RequestCredentials: CredentialsOmit,
					},
				},
			},
		},
		DefaultDataSourceName:      "dicomweb",
		Hotkeys:                    []Hotkey{},
		CornerstoneExtensionConfig: map[string]interface{}{},
		InvestigationalUseDialog: InvestigationalUseDialog{
			Option: DialogNever,
		},
	}
}
